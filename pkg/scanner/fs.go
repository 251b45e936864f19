package scanner

func newCounters(total int) *counters {
	c := &counters{}
	c.totalFiles.Store(int64(total))
	return c
}

func (c *counters) snapshot() Progress {
	if c == nil {
		return Progress{}
	}
	return Progress{
		TotalFiles:   c.totalFiles.Load(),
		ScannedFiles: c.scannedFiles.Load(),
		BytesRead:    c.bytesRead.Load(),
		Matches:      c.matches.Load(),
	}
}
