package util

// ImportActive reports whether an import job may still make progress.
func ImportActive(status string) bool {
	return status == "pending" || status == "running"
}

// RemainingRows returns how many rows of an import are still unprocessed.
func RemainingRows(total, succeeded, failed int32) int64 {
	remaining := int64(total) - int64(succeeded) - int64(failed)
	if remaining < 0 {
		return 0
	}
	return remaining
}
