// Copyright 2024 The evmdecomp Authors
// This file is part of the evmdecomp library.
//
// The evmdecomp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmdecomp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmdecomp library. If not, see <http://www.gnu.org/licenses/>.

package pipeline

import "github.com/trailbytes/evmdecomp/analyzer"

// stateMutability renders fn's three flags as the single Solidity ABI
// stateMutability string with the precedence pure, then payable, then
// view, else nonpayable (analyzer.Analyze never sets Pure without View).
func stateMutability(fn analyzer.Function) string {
	switch {
	case fn.Pure:
		return "pure"
	case fn.Payable:
		return "payable"
	case fn.View:
		return "view"
	default:
		return "nonpayable"
	}
}
