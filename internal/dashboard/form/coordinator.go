package form

import (
	"context"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/dashboard/apiclient"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/pkg/logging"
)

// UserWriter 提交协调器需要的用户写接口
type UserWriter interface {
	CreateUser(ctx context.Context, draft model.Draft) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, draft model.Draft) (*model.User, error)
}

// ListRefresher 成功提交后触发的列表全量重拉
type ListRefresher interface {
	Fetch(ctx context.Context) error
}

// OutcomeKind 提交结局类别
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeValidationFailure OutcomeKind = "validation_failure"
	OutcomeAPIFailure        OutcomeKind = "api_failure"
)

// Outcome 一次提交的结局
type Outcome struct {
	Kind OutcomeKind
	// User 成功时为服务端返回的记录（含分配的 ID）
	User *model.User
	// FieldErrors 校验失败或服务端字段错误时非空
	FieldErrors model.FieldErrors
	// ServerError 一般性失败的展示文本
	ServerError string
}

// Coordinator 提交协调器
//
// 编排 校验 → 发送 → 归类响应 → 刷新列表 四步，
// 区分客户端校验失败与服务端/网络失败。
// 服务端/网络错误永远不会向上抛出——一律转为表单状态，
// 调用方（UI）不需要在 Submit 外再包错误处理。
type Coordinator struct {
	client UserWriter
	list   ListRefresher
	logger *logging.Logger
}

// NewCoordinator 创建提交协调器
func NewCoordinator(client UserWriter, list ListRefresher) *Coordinator {
	return &Coordinator{
		client: client,
		list:   list,
		logger: logging.Default("form"),
	}
}

// Submit 提交表单
//
// 流程：
//  1. 状态置 submitting，清空既有错误与 serverError
//  2. 运行字段校验；失败则写回 errors、状态回到 idle（不是 failed），
//     不接触网络
//  3. 创建模式 POST /users，编辑模式 PUT /users/{id}
//  4. 2xx：状态 succeeded，触发且仅触发一次列表全量重拉
//     （绝不本地拼接新记录——服务端可能分配或规范化字段），
//     随后关闭表单
//  5. 失败：按类别写回字段错误或 serverError，状态 failed，
//     不重拉列表，表单保持打开、字段值原样保留
//
// 返回的 error 仅表示调用方误用（表单未打开、提交在途），
// 业务性失败全部体现在 Outcome 与表单状态中。
func (c *Coordinator) Submit(ctx context.Context, ctrl *Controller) (Outcome, error) {
	draft, mode, targetID, gen, err := ctrl.beginSubmit()
	if err != nil {
		return Outcome{}, err
	}

	validated, fieldErrs := Validate(draft)
	if fieldErrs != nil {
		// 校验失败不是服务端错误：状态回 idle
		ctrl.settle(gen, model.StatusIdle, fieldErrs, "")
		return Outcome{Kind: OutcomeValidationFailure, FieldErrors: fieldErrs}, nil
	}

	var (
		user   *model.User
		apiErr error
	)
	if mode == ModeEdit {
		user, apiErr = c.client.UpdateUser(ctx, targetID, validated)
	} else {
		user, apiErr = c.client.CreateUser(ctx, validated)
	}

	if apiErr != nil {
		return c.settleFailure(ctrl, gen, apiErr), nil
	}

	ctrl.settle(gen, model.StatusSucceeded, nil, "")

	// 全量重拉：列表仓库是唯一事实来源
	if err := c.list.Fetch(ctx); err != nil {
		c.logger.WithError(err).Warn("list refresh after submit failed")
	}

	ctrl.Close()
	return Outcome{Kind: OutcomeSuccess, User: user}, nil
}

// settleFailure 把归类后的 API 失败写回表单状态
func (c *Coordinator) settleFailure(ctrl *Controller, gen uint64, err error) Outcome {
	apiErr := apiclient.AsError(err)

	switch apiErr.Kind {
	case apiclient.KindDuplicate:
		errs := model.FieldErrors{model.FieldEmail: model.CodeDuplicate}
		ctrl.settle(gen, model.StatusFailed, errs, "")
		return Outcome{Kind: OutcomeAPIFailure, FieldErrors: errs}

	case apiclient.KindFieldValidation:
		errs := model.FieldErrors{}
		for _, d := range apiErr.Details {
			errs[d.Field] = d.Message
		}
		ctrl.settle(gen, model.StatusFailed, errs, "")
		return Outcome{Kind: OutcomeAPIFailure, FieldErrors: errs}

	default:
		// 网络/一般/未预期失败：单条非字段错误，文本永远是字符串
		if apiErr.Kind == apiclient.KindUnexpected {
			c.logger.WithError(apiErr.Unwrap()).Error("unexpected submit failure")
		}
		ctrl.settle(gen, model.StatusFailed, nil, apiErr.Message)
		return Outcome{Kind: OutcomeAPIFailure, ServerError: apiErr.Message}
	}
}
