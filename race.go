// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package faaq

// RaceEnabled is true when the race detector is active.
// Tests use it to skip concurrent runs, whose payload hand-off through
// slot state CAS the detector reports as a race.
const RaceEnabled = true
