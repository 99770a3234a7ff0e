//go:build !linux && !darwin

package native

func osThreadID() (int64, bool) {
	return 0, false
}
