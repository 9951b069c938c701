// Package report parses the XML alignment report returned by web BLAST into
// flat query/hit/HSP records, preserving document order and attributing each
// child record to its parent by identifier.
package report

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Query is one submitted sequence record (one Iteration in the report).
type Query struct {
	ID     string
	Def    string
	Length int
}

// Hit is one database sequence reported as matching a query.
type Hit struct {
	ID        string
	Def       string
	Accession string
	QueryID   string
}

// HSP is one local alignment between a query and a hit. PercentID is derived
// as 100 × AlignLength ÷ owning query length; HSPs carry no natural key, the
// store assigns one at insert time.
type HSP struct {
	AlignLength int
	BitScore    float64
	EValue      float64
	Gaps        int
	PercentID   float64
	HitID       string
}

// Records groups the three flattened collections in document order.
type Records struct {
	Queries []Query
	Hits    []Hit
	HSPs    []HSP
}

// XML decode targets, named after the NCBI BlastOutput DTD elements.
type xmlOutput struct {
	XMLName    xml.Name       `xml:"BlastOutput"`
	Iterations []xmlIteration `xml:"BlastOutput_iterations>Iteration"`
}

type xmlIteration struct {
	QueryID  string   `xml:"Iteration_query-ID"`
	QueryDef string   `xml:"Iteration_query-def"`
	QueryLen int      `xml:"Iteration_query-len"`
	Hits     []xmlHit `xml:"Iteration_hits>Hit"`
}

type xmlHit struct {
	ID        string   `xml:"Hit_id"`
	Def       string   `xml:"Hit_def"`
	Accession string   `xml:"Hit_accession"`
	HSPs      []xmlHSP `xml:"Hit_hsps>Hsp"`
}

type xmlHSP struct {
	BitScore float64 `xml:"Hsp_bit-score"`
	EValue   float64 `xml:"Hsp_evalue"`
	Gaps     int     `xml:"Hsp_gaps"`
	AlignLen int     `xml:"Hsp_align-len"`
}

// Parse decodes a full XML alignment report and flattens it. Fields the data
// model depends on (identifiers, query length, alignment length) are checked;
// a missing one is a parse error, not a silent zero.
func Parse(r io.Reader) (Records, error) {
	var doc xmlOutput
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Records{}, fmt.Errorf("decode report: %w", err)
	}

	var recs Records
	for i, it := range doc.Iterations {
		if it.QueryID == "" {
			return Records{}, fmt.Errorf("iteration %d: missing Iteration_query-ID", i)
		}
		if it.QueryLen <= 0 {
			return Records{}, fmt.Errorf("query %s: missing or non-positive Iteration_query-len", it.QueryID)
		}
		recs.Queries = append(recs.Queries, Query{
			ID:     it.QueryID,
			Def:    it.QueryDef,
			Length: it.QueryLen,
		})

		for j, h := range it.Hits {
			if h.ID == "" {
				return Records{}, fmt.Errorf("query %s: hit %d missing Hit_id", it.QueryID, j)
			}
			recs.Hits = append(recs.Hits, Hit{
				ID:        h.ID,
				Def:       h.Def,
				Accession: h.Accession,
				QueryID:   it.QueryID,
			})

			for k, hsp := range h.HSPs {
				if hsp.AlignLen <= 0 {
					return Records{}, fmt.Errorf("hit %s: HSP %d missing or non-positive Hsp_align-len", h.ID, k)
				}
				recs.HSPs = append(recs.HSPs, HSP{
					AlignLength: hsp.AlignLen,
					BitScore:    hsp.BitScore,
					EValue:      hsp.EValue,
					Gaps:        hsp.Gaps,
					PercentID:   100 * float64(hsp.AlignLen) / float64(it.QueryLen),
					HitID:       h.ID,
				})
			}
		}
	}
	return recs, nil
}
