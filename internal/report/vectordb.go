package report

import "regexp"

// vectordb_results arrives as a delimited text blob of
// condition,"symptoms","treatment" triples rather than structured JSON.
// Rows that do not match the triple pattern are skipped, never errored.
var triplePattern = regexp.MustCompile(`"?([^,"\n]+)"?\s*,\s*"([^"]*)"\s*,\s*"([^"]*)"`)

// ParseVectorDB extracts condition/symptoms/treatment rows from the blob.
// Malformed input yields zero rows.
func ParseVectorDB(blob string) []ConditionRow {
	if blob == "" {
		return nil
	}
	matches := triplePattern.FindAllStringSubmatch(blob, -1)
	if len(matches) == 0 {
		return nil
	}
	rows := make([]ConditionRow, 0, len(matches))
	for _, m := range matches {
		condition := trimRow(m[1])
		if condition == "" {
			continue
		}
		rows = append(rows, ConditionRow{
			Condition: condition,
			Symptoms:  trimRow(m[2]),
			Treatment: trimRow(m[3]),
		})
	}
	return rows
}

func trimRow(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}
