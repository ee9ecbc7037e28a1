//go:build !windows

package automation

import "fmt"

func connectPlatform(progID string) (Object, error) {
	return nil, fmt.Errorf("automation client for %s is only supported on Windows", progID)
}
