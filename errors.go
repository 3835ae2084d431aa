// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

import "errors"

// ErrThresholdTooLarge is returned by [Run] when Config.Theta zeroed
// every leaf's membership weight — the reference implementation's
// "threshold too large" case. No result is produced; callers should
// check with errors.Is.
var ErrThresholdTooLarge = errors.New("pargenfs: threshold too large, every leaf weight was zeroed")
