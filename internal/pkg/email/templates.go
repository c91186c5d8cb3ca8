package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<h2 style="color: #2563eb;">{{.Title}}</h2>
{{range .Lines}}<p>{{.}}</p>
{{end}}{{if .Code}}<div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">{{.Code}}</div>
{{end}}{{range .Links}}<p><a href="{{.URL}}" style="background-color: {{.Color}}; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">{{.Label}}</a></p>
{{end}}<hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
<p style="color: #6b7280; font-size: 12px;">此邮件由 DevMatch 系统自动发送，请勿回复。</p>
</div>
</body>
</html>`

var layoutTmpl = template.Must(template.New("layout").Parse(layout))

type link struct {
	Label string
	URL   string
	Color string
}

type page struct {
	Title string
	Lines []string
	Code  string
	Links []link
}

func render(kind, to, subject string, p page) *Message {
	var buf bytes.Buffer
	// 模板在 init 时已校验，执行失败只可能来自写入 bytes.Buffer
	_ = layoutTmpl.Execute(&buf, p)

	var text strings.Builder
	text.WriteString(p.Title + "\n\n")
	for _, line := range p.Lines {
		text.WriteString(line + "\n")
	}
	if p.Code != "" {
		text.WriteString("\n" + p.Code + "\n")
	}
	for _, l := range p.Links {
		text.WriteString(fmt.Sprintf("\n%s: %s", l.Label, l.URL))
	}

	return &Message{
		Kind:    kind,
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
		Text:    text.String(),
	}
}

// VerificationCode 注册验证码
func VerificationCode(to, name, code string) *Message {
	return render(KindVerification, to, "邮箱验证码 - DevMatch", page{
		Title: "邮箱验证",
		Lines: []string{
			fmt.Sprintf("%s，您好：", name),
			"您正在注册 DevMatch 账号，验证码为：",
		},
		Code: code,
	})
}

// ApplicationReceived 通知企业收到新的职位申请
func ApplicationReceived(to, companyName, jobTitle, engineerName, baseURL string, jobID int64) *Message {
	return render(KindApplication, to, fmt.Sprintf("新的申请：%s", jobTitle), page{
		Title: "收到新的职位申请",
		Lines: []string{
			fmt.Sprintf("%s，您好：", companyName),
			fmt.Sprintf("%s 申请了您发布的职位「%s」。", engineerName, jobTitle),
		},
		Links: []link{{Label: "查看申请", URL: fmt.Sprintf("%s/company/jobs/%d/applications", baseURL, jobID), Color: "#2563eb"}},
	})
}

// ScoutReceived 通知工程师收到 scout
func ScoutReceived(to, engineerName, companyName, subject, baseURL string) *Message {
	return render(KindScout, to, fmt.Sprintf("%s 向您发送了 scout", companyName), page{
		Title: "您收到了一封 scout",
		Lines: []string{
			fmt.Sprintf("%s，您好：", engineerName),
			fmt.Sprintf("%s 向您发送了一封 scout：「%s」。", companyName, subject),
		},
		Links: []link{{Label: "查看 scout", URL: baseURL + "/engineer/scouts", Color: "#2563eb"}},
	})
}

// ApprovalRequest 发给管理员的付款审批请求
type ApprovalRequest struct {
	PaymentID   int64
	CompanyName string
	Amount      string
	Currency    string
	Method      string
	Purpose     string
	ApproveURL  string
	RejectURL   string
	ExpiresAt   string
}

func PaymentApprovalRequest(to string, r ApprovalRequest) *Message {
	return render(KindApprovalRequest, to, fmt.Sprintf("付款审批请求 #%d", r.PaymentID), page{
		Title: "付款审批请求",
		Lines: []string{
			fmt.Sprintf("企业：%s", r.CompanyName),
			fmt.Sprintf("金额：%s %s", r.Amount, r.Currency),
			fmt.Sprintf("支付方式：%s，用途：%s", r.Method, r.Purpose),
			fmt.Sprintf("链接有效期至 %s。", r.ExpiresAt),
		},
		Links: []link{
			{Label: "批准", URL: r.ApproveURL, Color: "#16a34a"},
			{Label: "拒绝", URL: r.RejectURL, Color: "#dc2626"},
		},
	})
}

// PaymentResult 通知企业付款审批结果
func PaymentResult(to, companyName string, paymentID int64, approved bool) *Message {
	title := "付款已确认"
	line := fmt.Sprintf("您的付款 #%d 已确认，相关权益已生效。", paymentID)
	if !approved {
		title = "付款未通过"
		line = fmt.Sprintf("您的付款 #%d 未能确认，如有疑问请联系我们。", paymentID)
	}
	return render(KindPaymentResult, to, title+" - DevMatch", page{
		Title: title,
		Lines: []string{fmt.Sprintf("%s，您好：", companyName), line},
	})
}

// TrialEnding 试用即将到期提醒
func TrialEnding(to, companyName string, daysRemaining int, baseURL string) *Message {
	return render(KindTrialEnding, to, "试用即将到期 - DevMatch", page{
		Title: "试用即将到期",
		Lines: []string{
			fmt.Sprintf("%s，您好：", companyName),
			fmt.Sprintf("您的免费试用将在 %d 天后到期，到期后将无法发布职位与项目。", daysRemaining),
		},
		Links: []link{{Label: "选择套餐", URL: baseURL + "/company/subscription", Color: "#2563eb"}},
	})
}

// ContactInquiry 咨询内容
type ContactInquiry struct {
	ID          int64
	Name        string
	Email       string
	CompanyName string
	Category    string
	Subject     string
	Message     string
}

func ContactAdmin(to string, q ContactInquiry) *Message {
	return render(KindContactAdmin, to, fmt.Sprintf("新的咨询 #%d：%s", q.ID, q.Subject), page{
		Title: "新的咨询",
		Lines: []string{
			fmt.Sprintf("姓名：%s <%s>", q.Name, q.Email),
			fmt.Sprintf("公司：%s", q.CompanyName),
			fmt.Sprintf("类别：%s", q.Category),
			q.Message,
		},
	})
}

func ContactConfirmation(q ContactInquiry) *Message {
	return render(KindContactConfirm, q.Email, "我们已收到您的咨询 - DevMatch", page{
		Title: "感谢您的咨询",
		Lines: []string{
			fmt.Sprintf("%s，您好：", q.Name),
			fmt.Sprintf("我们已收到您关于「%s」的咨询，将尽快回复。", q.Subject),
		},
	})
}
