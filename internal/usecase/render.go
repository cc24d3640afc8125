package usecase

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"SmartRecover/internal/domain"
)

const (
	renderedErrors  = 3
	renderedResults = 5
)

// RenderJSON writes the full report as indented JSON.
func RenderJSON(w io.Writer, report domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// RenderText writes a human-readable summary of the report.
func RenderText(w io.Writer, report domain.Report) error {
	var b strings.Builder
	s := report.Summary

	if s.DryRun {
		fmt.Fprintf(&b, "Dry run %s: %d debtors indexed, %d rejected\n", s.RunID, s.Indexed, s.ScoringErrors)
		if len(report.Top) > 0 {
			b.WriteString("\nHighest priorities:\n")
			for i, e := range report.Top {
				fmt.Fprintf(&b, "  %2d. debtor %d  priority %.2f\n", i+1, e.DebtorID, e.Priority)
			}
		}
		writeErrors(&b, report.Errors)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Run %s\n", s.RunID)
	fmt.Fprintf(&b, "  processed:      %d of %d indexed\n", s.Processed, s.Indexed)
	fmt.Fprintf(&b, "  high priority:  %d\n", s.HighPriority)
	fmt.Fprintf(&b, "  batches:        %d\n", s.Batches)
	fmt.Fprintf(&b, "  errors:         %d (scoring %d, processing %d)\n", s.ErrorsCount, s.ScoringErrors, s.ProcessingErrors)
	fmt.Fprintf(&b, "  messages:       %d sent for %d debtors\n", s.MessagesSent, s.MessagedDebtors)
	fmt.Fprintf(&b, "  elapsed:        %.2fs\n", s.ProcessingSeconds)
	fmt.Fprintf(&b, "  throughput:     %.1f debtors/s\n", s.Throughput)
	if s.Cancelled {
		fmt.Fprintf(&b, "  cancelled with %d debtors remaining\n", s.Remaining)
	}

	var shown int
	for _, r := range report.DetailedResults {
		if !r.Succeeded() {
			continue
		}
		if shown == 0 {
			b.WriteString("\nTop results:\n")
		}
		marker := ""
		if r.HighPriority {
			marker = " [HIGH]"
		}
		fmt.Fprintf(&b, "  debtor %d %s: score %.2f (%s), priority %.2f%s\n",
			r.DebtorID, r.DebtorName, r.RiskScore, r.RiskLevel, r.Priority, marker)
		shown++
		if shown == renderedResults {
			break
		}
	}

	writeErrors(&b, report.Errors)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeErrors(b *strings.Builder, errs []domain.ErrorRecord) {
	if len(errs) == 0 {
		return
	}
	b.WriteString("\nErrors:\n")
	for i, e := range errs {
		if i == renderedErrors {
			fmt.Fprintf(b, "  ... and %d more\n", len(errs)-renderedErrors)
			break
		}
		fmt.Fprintf(b, "  debtor %d [%s]: %s\n", e.DebtorID, e.Stage, e.ErrorMessage)
	}
}

// Digest builds the short chat message sent after a run.
func Digest(report domain.Report) string {
	s := report.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "SmartRecover run %s\n", s.RunID)
	fmt.Fprintf(&b, "Processed %d debtors (%d high priority) in %.1fs\n", s.Processed, s.HighPriority, s.ProcessingSeconds)
	fmt.Fprintf(&b, "Errors: %d, partner sync messages: %d\n", s.ErrorsCount, s.MessagesSent)
	if s.Cancelled {
		fmt.Fprintf(&b, "Cancelled, %d debtors left in queue\n", s.Remaining)
	}
	return b.String()
}
