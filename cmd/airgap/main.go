// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package main

import (
	"github.com/locka99/airgap/sender"
)

func main() {
	sender.Main()
}
