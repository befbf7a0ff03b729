package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rpggio/defectlog/internal/domain/record"
)

const (
	filePrefix = "Relatorio_Defeitos_"
	lowMarker  = " (BAIXA)"
)

var (
	csvHeader = []string{"Hora", "Qualidade (%)", "Ocorrencia"}
	separator = strings.Repeat("-", 54)
)

// Tag returns the time tag used in report file names: the trigger time for
// scheduled exports, the current time for manual ones, both as HHMM.
func Tag(req Request, now time.Time) string {
	if req.Kind == KindScheduled {
		return strings.ReplaceAll(req.Trigger, ":", "")
	}
	return now.Format("1504")
}

// FileBase returns the report file name without extension.
func FileBase(date time.Time, tag string) string {
	return filePrefix + date.Format("02-01-2006") + "_" + tag
}

// WriteCSV writes the tabular report.
func WriteCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Time, rec.Quality, rec.Occurrence}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNarrative writes the plain-text report and returns how many records
// were flagged low.
func WriteNarrative(w io.Writer, records []record.Record, generatedAt time.Time, threshold float64) (int, error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "RELATÓRIO DE DEFEITOS")
	fmt.Fprintf(bw, "Data do Relatório: %s\n\n", generatedAt.Format("02/01/2006 15:04"))
	fmt.Fprintln(bw, separator)

	low := 0
	for _, rec := range records {
		status := ""
		if record.IsLow(rec.Quality, threshold) {
			status = lowMarker
			low++
		}
		fmt.Fprintf(bw, "HORA: %s\n", rec.Time)
		fmt.Fprintf(bw, "QUALIDADE: %s%s\n", rec.Quality, status)
		fmt.Fprintf(bw, "OCORRÊNCIA: %s\n", rec.Occurrence)
		fmt.Fprintln(bw, separator)
	}
	return low, bw.Flush()
}
