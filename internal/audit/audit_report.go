package audit

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

	"go.uber.org/zap"
)

type Report struct {
	Filename string
	Content  []byte
}

func (s *service) Report(ctx context.Context, actorID, id string) (Report, error) {
	a, err := s.load(ctx, actorID, id)
	if err != nil {
		return Report{}, err
	}
	if a.Status != StatusCompleted {
		return Report{}, apperror.InvalidState([]string{StatusCompleted}, a.Status, "report is available once the audit is completed")
	}

	content, err := buildReportPDF(reportLines(*a))
	if err != nil {
		s.logger.Error("build audit report failed", zap.String("audit_id", id), zap.Error(err))
		return Report{}, err
	}
	return Report{
		Filename: fmt.Sprintf("%s.pdf", a.Reference),
		Content:  content,
	}, nil
}

func reportLines(a Audit) []string {
	resp := mapToResponse(a)
	lines := []string{
		fmt.Sprintf("Audit Report %s", a.Reference),
		"",
		fmt.Sprintf("Title: %s", a.Title),
		fmt.Sprintf("Type: %s", a.Type),
		fmt.Sprintf("Factory: %s", a.FactoryID),
		fmt.Sprintf("Scheduled: %s", resp.ScheduledDate),
	}
	if resp.ActualStartDate != nil {
		lines = append(lines, fmt.Sprintf("Started: %s", *resp.ActualStartDate))
	}
	if resp.ActualEndDate != nil {
		lines = append(lines, fmt.Sprintf("Completed: %s", *resp.ActualEndDate))
	}
	if a.Score != nil {
		lines = append(lines, fmt.Sprintf("Score: %.2f", *a.Score))
	}
	if a.Summary != nil {
		lines = append(lines, "", "Summary:", *a.Summary)
	}
	if a.Recommendations != nil {
		lines = append(lines, "", "Recommendations:")
		lines = append(lines, strings.Split(*a.Recommendations, "\n")...)
	}
	return lines
}

// buildReportPDF renders lines as a single-page PDF with the standard
// Helvetica font.
func buildReportPDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Audit Report"}
	}

	var content strings.Builder
	content.WriteString("BT\n/F1 11 Tf\n14 TL\n50 800 Td\n")
	for i, line := range lines {
		escaped := pdfEscape(line)
		if i == 0 {
			content.WriteString(fmt.Sprintf("(%s) Tj\n", escaped))
			continue
		}
		content.WriteString(fmt.Sprintf("T* (%s) Tj\n", escaped))
	}
	content.WriteString("ET")

	stream := content.String()
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects)+1)
	offsets = append(offsets, 0)

	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xrefStart := out.Len()
	out.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)))
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i < len(offsets); i++ {
		out.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	out.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefStart))

	return out.Bytes(), nil
}

func pdfEscape(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return replacer.Replace(v)
}
