package handlog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RecordStartMarker opens every hand record in the reference dialect.
const RecordStartMarker = "Game started at:"

// Record is one contiguous raw hand block. Start is the 1-based line
// number of the record's first line in the source file, used for error
// reporting.
type Record struct {
	Lines []string
	Start int
}

func (r Record) numbered() []line {
	out := make([]line, len(r.Lines))
	for i, text := range r.Lines {
		out[i] = line{text: text, num: r.Start + i}
	}
	return out
}

// SplitRecords splits a multi-hand log into records on the record-start
// marker. Lines preceding the first marker are discarded.
func SplitRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []Record
	var cur *Record
	num := 0
	for scanner.Scan() {
		num++
		text := scanner.Text()
		if strings.Contains(text, RecordStartMarker) {
			if cur != nil {
				records = append(records, *cur)
			}
			cur = &Record{Start: num}
		}
		if cur != nil {
			cur.Lines = append(cur.Lines, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("handlog: reading log: %w", err)
	}
	if cur != nil {
		records = append(records, *cur)
	}
	return records, nil
}
