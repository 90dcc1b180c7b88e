package database

// MaxInOperands is the largest id list a single IN query may carry. The
// original deployment sat on a document store with a hard 30-element cap on
// "field IN list" filters; keeping the same bound here means id-list queries
// stay sharded the way the rest of the system expects, instead of silently
// relying on an unbounded SQL IN.
const MaxInOperands = 30

// ChunkIDs partitions ids into slices of at most size elements. The input
// slice is not copied; chunks alias its backing array.
func ChunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxInOperands
	}
	if len(ids) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
