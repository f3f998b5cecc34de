//go:build !unix

package conversion

import "os/exec"

// killProcessGroup keeps exec's default cancellation (kill the direct child).
func killProcessGroup(cmd *exec.Cmd) {}
