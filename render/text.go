// Package render formats narrative results for the text surfaces
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/giygas/narratives-api/entities"
)

// Separator ends every text block
var Separator = strings.Repeat("-", 80)

// TextBlocks writes one block per result in order:
//
//	ID: <regulatory_ID>
//	<narrative>
//
//	--------...
func TextBlocks(w io.Writer, results []entities.NarrativeResult) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := fmt.Fprintf(bw, "ID: %s\n%s\n\n%s\n", r.RegulatoryID, r.Narrative, Separator); err != nil {
			return fmt.Errorf("failed to write block for %s: %w", r.RegulatoryID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush text blocks: %w", err)
	}
	return nil
}
