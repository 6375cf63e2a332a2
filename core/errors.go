package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持 errors.Is：Module 与 Code 相同即视为同一类错误
//
// 使用场景：
//   - 语料错误：MALFORMED, OUT_OF_RANGE, DUPLICATE, MISMATCH, MISSING
//   - 打分错误：DIMENSION_MISMATCH
//   - 请求错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "DIMENSION_MISMATCH"）
	Message string // 错误消息
	Module  string // 模块名称（如 "corpus", "rank"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 让 errors.Is 可以跨 fmt.Errorf("%w") 包装匹配同一 Module + Code 的哨兵错误。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok || t == nil {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound          = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported      = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeUnavailable       = "UNAVAILABLE"        // 服务不可用
	ErrorCodeInvalidInput      = "INVALID_INPUT"      // 输入无效
	ErrorCodeInternalError     = "INTERNAL_ERROR"     // 内部错误
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH" // 向量维度与矩阵列数不一致
	ErrorCodeOutOfRange        = "OUT_OF_RANGE"       // 行号越界
	ErrorCodeDuplicate         = "DUPLICATE"          // 同一行被多个 ID 占用
	ErrorCodeMismatch          = "MISMATCH"           // 词表与矩阵不一致
	ErrorCodeMalformed         = "MALFORMED"          // 结构损坏
	ErrorCodeMissing           = "MISSING"            // 产物缺失
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleCorpus  = "corpus"  // 语料产物模块
	ModuleProfile = "profile" // 兴趣向量模块
	ModuleRank    = "rank"    // 打分模块
	ModuleService = "service" // 服务模块
)

// 结构性错误：上游产物不一致，必须中止请求，不能静默降级为 0 分。
var (
	ErrDimensionMismatch  = NewDomainError(ModuleRank, ErrorCodeDimensionMismatch, "rank: profile dimension does not match matrix columns")
	ErrRowOutOfRange      = NewDomainError(ModuleCorpus, ErrorCodeOutOfRange, "corpus: row index out of matrix bounds")
	ErrDuplicateRow       = NewDomainError(ModuleCorpus, ErrorCodeDuplicate, "corpus: row index mapped by more than one identifier")
	ErrVocabularyMismatch = NewDomainError(ModuleCorpus, ErrorCodeMismatch, "corpus: vocabulary size does not match matrix columns")
	ErrMalformedMatrix    = NewDomainError(ModuleCorpus, ErrorCodeMalformed, "corpus: malformed sparse matrix")
	ErrArtifactMissing    = NewDomainError(ModuleCorpus, ErrorCodeMissing, "corpus: required artifact missing")
	ErrInvalidRequest     = NewDomainError(ModuleService, ErrorCodeInvalidInput, "service: invalid request")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsStructural 判断错误是否来自语料/打分的结构性不一致。
func IsStructural(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr == nil {
		return false
	}
	switch domainErr.Code {
	case ErrorCodeDimensionMismatch, ErrorCodeOutOfRange, ErrorCodeDuplicate,
		ErrorCodeMismatch, ErrorCodeMalformed, ErrorCodeMissing:
		return true
	}
	return false
}
