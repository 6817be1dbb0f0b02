package logger

// RedactID masks an opaque identifier for safe logging, keeping enough of a
// prefix to correlate entries: "9f32ab11-..." → "9f32ab***".
// Short values (≤4 chars) are fully masked.
func RedactID(id string) string {
	if len(id) <= 4 {
		return "***"
	}
	if len(id) <= 8 {
		return id[:2] + "***"
	}
	return id[:6] + "***"
}
