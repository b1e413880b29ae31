package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/example/smartcore/internal/models"
)

// SendVerificationCode emails a signup code. The subject varies by purpose so
// employees joining a company see a distinct message from owners signing up.
func (m *Mailer) SendVerificationCode(ctx context.Context, to string, purpose models.Purpose, code string) error {
	subject := "Your SmartCore verification code"
	if purpose == models.PurposeEmployeeSignup {
		subject = "Your SmartCore employee verification code"
	}

	body := fmt.Sprintf(`
      <div style="font-family:Inter,system-ui,Segoe UI,Arial;line-height:1.6;padding:8px">
        <h2 style="margin:0 0 12px 0">SmartCore Technology</h2>
        <p style="margin:0 0 12px 0">Your verification code is:</p>
        <div style="font-size:28px;font-weight:700;letter-spacing:6px;background:#0b1020;color:#fff;padding:14px 16px;border-radius:12px;display:inline-block;border:1px solid rgba(255,255,255,.12)">
          %s
        </div>
        <p style="margin:12px 0 0 0;color:#666">This code expires in 10 minutes.</p>
      </div>
    `, html.EscapeString(code))

	return m.SendHTML(ctx, to, subject, body)
}

// SendEmployeeInvite emails an onboarding invite link to an employee's
// personal address. The link lets them set a password for their work email
// and expires after 24 hours.
func (m *Mailer) SendEmployeeInvite(ctx context.Context, to, fullName, companyName, inviteLink string) error {
	if companyName == "" {
		companyName = "your company"
	}

	body := fmt.Sprintf(`
      <div style="font-family:Inter,system-ui,-apple-system,Segoe UI,Roboto,Arial;line-height:1.5;color:#0b1020">
        <h2 style="margin:0 0 12px 0;">You&rsquo;ve been invited to SmartCore</h2>
        <p style="margin:0 0 14px 0;">
          Hi %s,<br/>
          %s has started your onboarding.
        </p>

        <p style="margin:0 0 14px 0;">
          Click the button below to securely set your password and complete your details.
          This link expires in <b>24 hours</b>.
        </p>

        <p style="margin:18px 0;">
          <a href="%s" style="display:inline-block;padding:12px 16px;border-radius:12px;background:#1e3a8a;color:#fff;text-decoration:none;">
            Complete onboarding
          </a>
        </p>

        <p style="margin:18px 0 0 0;font-size:13px;color:#425070;">
          If the button doesn&rsquo;t work, copy and paste this link into your browser:<br/>
          <span style="word-break:break-all;">%s</span>
        </p>

        <p style="margin:18px 0 0 0;font-size:13px;color:#425070;">
          Support: <a href="mailto:support@smartcoretechnology.co.uk">support@smartcoretechnology.co.uk</a>
        </p>
      </div>
    `, html.EscapeString(fullName), html.EscapeString(companyName), inviteLink, html.EscapeString(inviteLink))

	return m.SendHTML(ctx, to, "Complete your SmartCore onboarding", body)
}
