package audit

import "fmt"

// StoreError 审计存储错误基类
type StoreError struct {
	Code    string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// Is 按错误代码比较，支持 errors.Is 与哨兵值匹配
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	return ok && t.Code == e.Code
}

var (
	ErrEntryNotFound = &StoreError{Code: "ENTRY_NOT_FOUND", Message: "audit entry not found"}
	ErrStoreFailed   = &StoreError{Code: "STORE_FAILED", Message: "audit store operation failed"}
)

func NewStoreFailedError(message string, cause error) *StoreError {
	return &StoreError{Code: "STORE_FAILED", Message: message, Cause: cause}
}

// InvalidEntryError 结构非法的条目（缺少审计对象、未知动作等）
type InvalidEntryError struct {
	Reason string
	Cause  error
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("INVALID_ENTRY: %s", e.Reason)
}

func (e *InvalidEntryError) Unwrap() error { return e.Cause }

func NewInvalidEntryError(reason string, cause error) *InvalidEntryError {
	return &InvalidEntryError{Reason: reason, Cause: cause}
}

// EntityNotFoundError 撤销/重建需要活动实体而实体层查不到
type EntityNotFoundError struct {
	EntityType string
	EntityID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("ENTITY_NOT_FOUND: entity %s:%s not found", e.EntityType, e.EntityID)
}

func NewEntityNotFoundError(entityType, entityID string) *EntityNotFoundError {
	return &EntityNotFoundError{EntityType: entityType, EntityID: entityID}
}
