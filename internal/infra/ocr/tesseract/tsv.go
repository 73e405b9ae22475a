package tesseract

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	domain "github.com/bryanwahyu/nutriguard/internal/domain/ocr"
)

// tesseract tsv columns
const (
	colLevel = iota
	colPage
	colBlock
	colPar
	colLine
	colWord
	colLeft
	colTop
	colWidth
	colHeight
	colConf
	colText
	numCols
)

const wordLevel = "5"

// ParseTSV rebuilds the recognised text line by line and averages word confidence.
func ParseTSV(out []byte) domain.Extraction {
	var (
		lines    []string
		current  []string
		lastLine string
		confSum  float64
		confN    int
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < numCols || cols[colLevel] != wordLevel {
			continue
		}
		word := strings.TrimSpace(cols[colText])
		if word == "" {
			continue
		}
		key := cols[colPage] + "/" + cols[colBlock] + "/" + cols[colPar] + "/" + cols[colLine]
		if key != lastLine {
			flush()
			lastLine = key
		}
		current = append(current, word)

		if conf, err := strconv.ParseFloat(cols[colConf], 64); err == nil && conf >= 0 {
			confSum += conf
			confN++
		}
	}
	flush()

	ex := domain.Extraction{Text: strings.Join(lines, "\n")}
	if confN > 0 {
		ex.Confidence = confSum / float64(confN)
	}
	return ex
}
