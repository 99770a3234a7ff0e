//go:build darwin

package native

func osThreadID() (int64, bool) {
	if err := Load(); err != nil {
		return 0, false
	}
	return darwinThreadID()
}
