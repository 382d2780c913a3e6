package service

import (
	"context"
	"elsofra/internal/db"
	"elsofra/internal/logging"
	"elsofra/internal/utils"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultLegacyPartySize = 2
	defaultLegacySlot      = "19:30"
	unknownLegacyRoom      = "Non spécifié"
)

var ledgerColumns = []string{"date_passage", "numero_chambre", "nombre_pax", "heure_passage", "statut"}

type LedgerWriter interface {
	InsertRecords(ctx context.Context, records []db.HistoricalRecord) (int, error)
	ClearRecords(ctx context.Context) (int64, error)
}

// ImportReport counts what happened to each CSV row.
type ImportReport struct {
	Read             int
	Imported         int
	Skipped          int
	PartySizeFixed   int
	TimeSlotFixed    int
	RoomNormalized   int
	StatusNormalized int
	Cleared          int64
}

// LedgerImporter loads the OCR export of past reservations into the legacy ledger.
type LedgerImporter struct {
	writer LedgerWriter
	tx     TxRunner
	logger *zap.Logger
}

func NewLedgerImporter(writer LedgerWriter, tx TxRunner, logger *zap.Logger) *LedgerImporter {
	return &LedgerImporter{writer: writer, tx: tx, logger: logging.OrNop(logger)}
}

// Import reads a CSV with a header row and appends the cleaned records. With
// replace set, existing records are deleted in the same transaction.
func (i *LedgerImporter) Import(ctx context.Context, r io.Reader, replace bool) (ImportReport, error) {
	records, report, err := i.parse(r)
	if err != nil {
		return report, err
	}

	err = i.tx.WithTx(ctx, func(ctx context.Context) error {
		if replace {
			n, err := i.writer.ClearRecords(ctx)
			if err != nil {
				return err
			}
			report.Cleared = n
		}
		n, err := i.writer.InsertRecords(ctx, records)
		report.Imported = n
		return err
	})
	if err != nil {
		report.Imported = 0
		return report, err
	}

	i.logger.Info("legacy ledger imported",
		zap.Int("read", report.Read),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("party_size_fixed", report.PartySizeFixed),
		zap.Int("time_slot_fixed", report.TimeSlotFixed),
		zap.Int("room_normalized", report.RoomNormalized),
		zap.Int("status_normalized", report.StatusNormalized),
	)
	return report, nil
}

func (i *LedgerImporter) parse(r io.Reader) ([]db.HistoricalRecord, ImportReport, error) {
	var report ImportReport

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, report, errors.New("empty ledger file")
		}
		return nil, report, fmt.Errorf("error reading header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, report, err
	}

	var records []db.HistoricalRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, report, fmt.Errorf("line %d: %w", line, err)
		}
		report.Read++

		field := func(name string) string {
			idx := cols[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		rec, ok := cleanRecord(field, &report)
		if !ok {
			report.Skipped++
			i.logger.Debug("skipping ledger row", zap.Int("line", line), zap.Strings("row", row))
			continue
		}
		records = append(records, rec)
	}
	return records, report, nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = idx
	}
	for _, name := range ledgerColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

// cleanRecord applies the legacy cleaning rules. Rows without a usable date
// or room are rejected.
func cleanRecord(field func(string) string, report *ImportReport) (db.HistoricalRecord, bool) {
	date, err := utils.ParseDate(field("date_passage"))
	if err != nil {
		return db.HistoricalRecord{}, false
	}

	rawRoom := field("numero_chambre")
	if rawRoom == "" || rawRoom == unknownLegacyRoom {
		return db.HistoricalRecord{}, false
	}
	room := strings.ReplaceAll(strings.ReplaceAll(rawRoom, ".", "-"), " ", "")
	if room != rawRoom {
		report.RoomNormalized++
	}
	tokens := utils.RoomTokens(room)
	if len(tokens) == 0 {
		return db.HistoricalRecord{}, false
	}

	pax, err := strconv.Atoi(strings.TrimSuffix(field("nombre_pax"), ".0"))
	if err != nil || pax <= 0 {
		pax = defaultLegacyPartySize
		report.PartySizeFixed++
	}

	rawSlot := field("heure_passage")
	slot, err := utils.NormalizeSlot(rawSlot)
	if err != nil {
		slot = defaultLegacySlot
	}
	if slot != rawSlot {
		report.TimeSlotFixed++
	}

	status, normalized := cleanStatus(field("statut"))
	if normalized {
		report.StatusNormalized++
	}

	return db.HistoricalRecord{
		StayDate:   date,
		RoomNumber: room,
		RoomIDs:    tokens,
		PartySize:  pax,
		TimeSlot:   slot,
		Status:     status,
	}, true
}

// cleanStatus maps the free-text statut column; anything unrecognized counts
// as confirmed.
func cleanStatus(raw string) (db.RecordStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return db.RecordConfirmed, false
	case strings.Contains(s, "annul"), strings.Contains(s, "cancel"):
		return db.RecordCancelled, s != "annulé" && s != "cancelled"
	case strings.Contains(s, "confirm"):
		return db.RecordConfirmed, s != "confirmé" && s != "confirmed"
	}
	return db.RecordConfirmed, true
}
