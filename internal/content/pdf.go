package content

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// textShowOp matches literal strings fed to the Tj/TJ/'/" text-showing
// operators in a decoded PDF content stream.
var textShowOp = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|TJ|'|")`)

// pdfEscapes maps PDF string escape sequences to their characters.
var pdfEscapes = strings.NewReplacer(
	`\n`, "\n", `\r`, "", `\t`, "\t",
	`\(`, "(", `\)`, ")", `\\`, `\`,
)

// extractPDFText pulls text-show operands out of each page's content stream.
// This handles simply encoded PDFs; image-only scans yield no text and are
// reported as unsupported.
func extractPDFText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return "", fmt.Errorf("%w: not a readable PDF: %v", ErrUnsupportedFormat, err)
	}

	var b strings.Builder
	for page := 1; page <= pageCount; page++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreachableSource, err)
		}
		ctx, err := api.ReadValidateAndOptimize(f, nil)
		if err != nil {
			continue
		}
		r, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil || r == nil {
			continue
		}
		stream, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		for _, m := range textShowOp.FindAllStringSubmatch(string(stream), -1) {
			b.WriteString(pdfEscapes.Replace(m[1]))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: PDF contains no extractable text", ErrUnsupportedFormat)
	}
	return text, nil
}
