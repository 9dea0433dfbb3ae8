package postgres

import "database/sql"

// inChunkSize caps the number of ids bound into a single IN clause.
const inChunkSize = 500

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func stringSliceToAny(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func chunkStrings(items []string, size int) [][]string {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for len(items) > size {
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	return append(chunks, items)
}
