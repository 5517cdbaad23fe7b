package ontology

import (
	"strings"
)

// DefaultSegmentMaxChars 单个分段的默认最大长度（按rune计）
const DefaultSegmentMaxChars = 2000

// Segment 文档文本分段，Index是跨全文档的顺序号
type Segment struct {
	Index int
	Text  string
}

// Segmenter 文档分段器：先按逻辑单元（页/段）提取文本，再把每个单元
// 切成不超过maxChars的分段。切分点按优先级查找：段落空行、换行、句末
// 标点（含全角句点和中日句号），找不到就在长度上限处硬切。相邻分段
// 之间没有重叠。
type Segmenter struct {
	maxChars   int
	extractors *ExtractorManager
}

// NewSegmenter 创建文档分段器
func NewSegmenter(maxChars int) *Segmenter {
	if maxChars <= 0 {
		maxChars = DefaultSegmentMaxChars
	}
	return &Segmenter{
		maxChars:   maxChars,
		extractors: NewExtractorManager(),
	}
}

// Segment 加载文档并返回有序分段，每次调用重新计算
func (s *Segmenter) Segment(path string) ([]Segment, error) {
	units, err := s.extractors.Extract(path)
	if err != nil {
		return nil, err
	}

	var segments []Segment
	for _, unit := range units {
		for _, piece := range splitByBoundary(unit, s.maxChars) {
			segments = append(segments, Segment{
				Index: len(segments),
				Text:  piece,
			})
		}
	}
	return segments, nil
}

// 句末标点，全角句点(U+FF0E)和中日句号(U+3002)也算
func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '．' || r == '。'
}

// splitByBoundary 把一段文本切成长度不超过maxChars的片段。在每个窗口
// 内从后往前找最优切分点：先找段落空行，再找换行，再找句末标点，都
// 没有就硬切。
func splitByBoundary(text string, maxChars int) []string {
	runes := []rune(text)
	var pieces []string

	appendPiece := func(chunk []rune) {
		piece := strings.TrimSpace(string(chunk))
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}

	start := 0
	for start < len(runes) {
		remaining := len(runes) - start
		if remaining <= maxChars {
			appendPiece(runes[start:])
			break
		}

		window := runes[start : start+maxChars]
		cut := boundaryCut(window)
		if cut <= 0 {
			cut = maxChars
		}
		appendPiece(runes[start : start+cut])
		start += cut
	}

	return pieces
}

// boundaryCut 返回窗口内最优切分位置（切分点之后的下一个rune下标），
// 找不到任何边界返回0
func boundaryCut(window []rune) int {
	paragraph, line, sentence := -1, -1, -1
	for i := len(window) - 1; i >= 0; i-- {
		r := window[i]
		if r == '\n' {
			if paragraph < 0 && i > 0 && window[i-1] == '\n' {
				paragraph = i + 1
			}
			if line < 0 {
				line = i + 1
			}
		}
		if sentence < 0 && isSentenceTerminator(r) {
			sentence = i + 1
		}
		if paragraph > 0 {
			break
		}
	}

	switch {
	case paragraph > 0:
		return paragraph
	case line > 0:
		return line
	case sentence > 0:
		return sentence
	default:
		return 0
	}
}
