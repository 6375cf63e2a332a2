package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Vocabulary 是列号 -> 词 的只读映射，来自冻结的 TF-IDF 变换。
// nil 或空词表表示"不可用"，解释器会返回空列表而不是报错。
type Vocabulary struct {
	terms []string
}

// NewVocabulary 拷贝 terms 构建词表。
func NewVocabulary(terms []string) *Vocabulary {
	cp := make([]string, len(terms))
	copy(cp, terms)
	return &Vocabulary{terms: cp}
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Available 判断词表是否可用于解释。
func (v *Vocabulary) Available() bool {
	return v.Len() > 0
}

// Term 返回第 i 列对应的词。
func (v *Vocabulary) Term(i int) (string, bool) {
	if v == nil || i < 0 || i >= len(v.terms) {
		return "", false
	}
	return v.terms[i], true
}

// ReadVocabulary 逐行读取词表，第 i 行对应第 i 列。
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	terms := make([]string, 0, 1024)
	for sc.Scan() {
		terms = append(terms, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return &Vocabulary{terms: terms}, nil
}
