package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

var approvalPage = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html lang="zh">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:sans-serif;max-width:560px;margin:48px auto;">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
{{if .PaymentID}}<p>付款编号：#{{.PaymentID}}</p>{{end}}
</body>
</html>`))

type approvalView struct {
	Title     string
	Message   string
	PaymentID int64
}

type AdminHandler struct {
	paymentService *service.PaymentService
	contactService *service.ContactService
}

func NewAdminHandler(paymentService *service.PaymentService, contactService *service.ContactService) *AdminHandler {
	return &AdminHandler{
		paymentService: paymentService,
		contactService: contactService,
	}
}

// ApprovePayment 邮件中的审批链接，返回 HTML 页面
// GET /admin/payments/approve?token=
func (h *AdminHandler) ApprovePayment(c *gin.Context) {
	approval, err := h.paymentService.Approve(c.Request.Context(), c.Query("token"))
	h.renderDecision(c, approval, err, model.ApprovalApproved)
}

// RejectPayment GET /admin/payments/reject?token=
func (h *AdminHandler) RejectPayment(c *gin.Context) {
	approval, err := h.paymentService.Reject(c.Request.Context(), c.Query("token"))
	h.renderDecision(c, approval, err, model.ApprovalRejected)
}

func (h *AdminHandler) renderDecision(c *gin.Context, approval *model.PaymentApproval, err error, to model.ApprovalStatus) {
	view := approvalView{}
	if approval != nil {
		view.PaymentID = approval.PaymentID
	}

	status := http.StatusOK
	switch {
	case err == nil && to == model.ApprovalApproved:
		view.Title, view.Message = "已批准", "付款已确认，相关权益已生效。"
	case err == nil:
		view.Title, view.Message = "已拒绝", "付款已标记为失败。"
	case errors.Is(err, service.ErrAlreadyProcessed):
		view.Title, view.Message = "已处理", "该付款审批已经处理过。"
		if approval != nil {
			view.Message += "（当前状态：" + string(approval.Status) + "）"
		}
	case errors.Is(err, service.ErrPaymentSettled):
		status = http.StatusConflict
		view.Title, view.Message = "已处理", settledMessage(approval)
	case errors.Is(err, service.ErrApprovalExpired):
		status = http.StatusGone
		view.Title, view.Message = "链接已过期", "审批链接已过期，请企业重新提交审批。"
	case errors.Is(err, service.ErrApprovalNotFound):
		status = http.StatusNotFound
		view.Title, view.Message = "链接无效", "未找到对应的审批请求。"
	default:
		_ = c.Error(err)
		status = http.StatusInternalServerError
		view.Title, view.Message = "出错了", "处理时发生错误，请稍后重试。"
	}

	c.Render(status, render.HTML{Template: approvalPage, Name: "approval", Data: view})
}

func settledMessage(approval *model.PaymentApproval) string {
	if approval != nil && approval.Payment != nil && approval.Payment.Status == model.PaymentFailed {
		return "该付款已被支付渠道判定为失败，无法再变更。"
	}
	return "该付款已通过支付渠道确认，无法再变更。"
}

// ListInquiries 咨询列表
// GET /api/v1/admin/contact-inquiries?status=new
func (h *AdminHandler) ListInquiries(c *gin.Context) {
	var q dto.ContactListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageOf(q.PageQuery)

	inquiries, total, err := h.contactService.List(q.Status, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, inquiries)
}

// ResolveInquiry POST /api/v1/admin/contact-inquiries/:id/resolve
func (h *AdminHandler) ResolveInquiry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.contactService.Resolve(id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.SuccessResponse{Success: true})
}
