// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hotswap is a container for hot swap controller drivers and the
// supply switches they depend on.
//
// See ltc4282 for the driver and cmd/ltc4282mon for a monitoring tool.
package hotswap
