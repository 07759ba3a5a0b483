package form

import (
	"errors"
	"sync"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

// Mode 表单模式
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

var (
	// ErrFormClosed 表单未打开时的操作
	ErrFormClosed = errors.New("form is not open")
	// ErrUnknownField 未知字段名
	ErrUnknownField = errors.New("unknown form field")
	// ErrSubmitInFlight 已有提交在途（同一表单实例同时最多一个）
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// State 表单状态快照（只读）
type State struct {
	Open        bool
	Mode        Mode
	TargetID    int64
	Draft       model.Draft
	Errors      model.FieldErrors
	Status      model.SubmissionStatus
	ServerError string
}

// Controller 表单状态控制器
//
// 持有一个打开的表单实例的 {draft, errors, status, serverError}。
// 状态只通过声明的操作变更，外部经 Snapshot() 只读访问。
// generation 在每次 Open/Close 时递增：关闭表单后落地的迟到
// 提交响应会因代次不匹配而被丢弃。
type Controller struct {
	mu         sync.Mutex
	generation uint64

	open        bool
	mode        Mode
	targetID    int64
	draft       model.Draft
	errors      model.FieldErrors
	status      model.SubmissionStatus
	serverError string
}

// NewController 创建表单控制器（初始为关闭状态）
func NewController() *Controller {
	return &Controller{status: model.StatusIdle}
}

// Open 打开表单
//
// initial 非空为编辑模式（草稿从记录复制）；为空为创建模式，
// 草稿为空模板且 gender 默认 male。无论哪种模式都清空错误与
// serverError，状态回到 idle。
func (c *Controller) Open(initial *model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.open = true
	c.errors = model.FieldErrors{}
	c.serverError = ""
	c.status = model.StatusIdle

	if initial != nil {
		c.mode = ModeEdit
		c.targetID = initial.ID
		c.draft = model.DraftOf(*initial)
		return
	}
	c.mode = ModeCreate
	c.targetID = 0
	c.draft = model.Draft{Gender: string(model.GenderMale)}
}

// UpdateField 更新单个字段
//
// 该字段已有的错误立即消失（在任何重新校验发生之前），
// serverError 一并清除。
func (c *Controller) UpdateField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return ErrFormClosed
	}

	switch field {
	case model.FieldName:
		c.draft.Name = value
	case model.FieldEmail:
		c.draft.Email = value
	case model.FieldGender:
		c.draft.Gender = value
	case model.FieldPhone:
		c.draft.Phone = value
	default:
		return ErrUnknownField
	}

	delete(c.errors, field)
	c.serverError = ""
	return nil
}

// Close 关闭表单并整体丢弃草稿
//
// 不保留任何部分输入；重新打开总是走 Open 的重置逻辑。
// 在途提交的响应会被丢弃（代次已变）。
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.open = false
	c.draft = model.Draft{}
	c.errors = nil
	c.serverError = ""
	c.status = model.StatusIdle
}

// Snapshot 返回当前状态的只读快照
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Open:        c.open,
		Mode:        c.mode,
		TargetID:    c.targetID,
		Draft:       c.draft,
		Errors:      c.errors.Clone(),
		Status:      c.status,
		ServerError: c.serverError,
	}
}

// ============================================================================
// 提交协调器专用的状态迁移（不对外导出）
// ============================================================================

// beginSubmit 进入 submitting 状态
//
// 返回草稿副本、模式与代次。已有提交在途或表单未打开时拒绝。
// 清空全部错误与 serverError（提交尝试开始时整体清除）。
func (c *Controller) beginSubmit() (draft model.Draft, mode Mode, targetID int64, gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return model.Draft{}, "", 0, 0, ErrFormClosed
	}
	if c.status == model.StatusSubmitting {
		return model.Draft{}, "", 0, 0, ErrSubmitInFlight
	}

	c.errors = model.FieldErrors{}
	c.serverError = ""
	c.status = model.StatusSubmitting
	return c.draft, c.mode, c.targetID, c.generation, nil
}

// settle 提交落定，按代次丢弃迟到响应
func (c *Controller) settle(gen uint64, status model.SubmissionStatus, errs model.FieldErrors, serverError string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || !c.open {
		return
	}

	c.status = status
	if errs != nil {
		c.errors = errs
	}
	c.serverError = serverError
}
