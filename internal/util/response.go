package util

// Envelope is the JSON body shape every handler responds with.
type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

// Collection wraps a list response together with its item count so clients
// can detect an exhausted page without counting.
func Collection(key string, items any, count int) Envelope {
	return Envelope{
		key:     items,
		"count": count,
	}
}
