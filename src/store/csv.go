package store

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mosaicnetworks/regka/src/sim"
)

// CSVHeader is the first line of a results file.
var CSVHeader = []string{
	"timestamp",
	"numNodes",
	"linkQuality",
	"runId",
	"completionTime",
	"totalSent",
	"totalReceived",
	"overheadRatio",
	"successRate",
}

// CSVRecord returns the columns of a result, in CSVHeader order.
func CSVRecord(r *sim.Result) []string {
	return []string{
		r.Timestamp.Format(time.RFC3339),
		strconv.FormatUint(uint64(r.NumNodes), 10),
		r.LinkQuality,
		r.RunID,
		strconv.FormatFloat(r.CompletionTime, 'f', 6, 64),
		strconv.FormatUint(r.TotalSent, 10),
		strconv.FormatUint(r.TotalReceived, 10),
		strconv.FormatFloat(r.OverheadRatio, 'f', 4, 64),
		strconv.FormatFloat(r.SuccessRate, 'f', 2, 64),
	}
}

// WriteCSV writes the header followed by one line per result.
func WriteCSV(w io.Writer, results []*sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(CSVRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendCSV appends results to the file at path, writing the header first
// if the file is new or empty.
func AppendCSV(path string, results ...*sim.Result) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
	}
	for _, r := range results {
		if err := cw.Write(CSVRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	return f.Close()
}
