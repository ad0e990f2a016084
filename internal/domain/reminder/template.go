package reminder

import (
	"strconv"

	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/valyala/bytebufferpool"
)

const dueDateLayout = "2006-01-02"

func dueDateText(req Request) string {
	if req.DueDate.IsZero() {
		return "cycle " + strconv.Itoa(req.DueCycle)
	}
	return req.DueDate.Format(dueDateLayout)
}

// TemplateReminder renders the fixed reminder text. Every field of req appears
// in the output.
func TemplateReminder(req Request) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	amount := req.Amount.StringFixed(2)
	due := dueDateText(req)

	if req.Language == user.LanguageUrdu {
		_, _ = buf.WriteString("محترم " + req.MemberName + "،\n\n")
		_, _ = buf.WriteString(req.CommitteeName + " کمیٹی کی قسط نمبر " + strconv.Itoa(req.DueCycle) + " کی یاددہانی۔\n\n")
		_, _ = buf.WriteString("• رقم: " + amount + " روپے\n")
		_, _ = buf.WriteString("• آخری تاریخ: " + due + "\n\n")
		_, _ = buf.WriteString("شکریہ،\n" + req.CommitteeName + " ٹیم")
		return buf.String()
	}

	_, _ = buf.WriteString("Dear " + req.MemberName + ",\n\n")
	_, _ = buf.WriteString("This is a friendly reminder for your " + req.CommitteeName + " committee payment for cycle " + strconv.Itoa(req.DueCycle) + ".\n\n")
	_, _ = buf.WriteString("• Amount: " + amount + "\n")
	_, _ = buf.WriteString("• Due Date: " + due + "\n\n")
	_, _ = buf.WriteString("Thank you,\n" + req.CommitteeName + " Team")
	return buf.String()
}

func TemplateSummary(req SummaryRequest) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	collected := req.TotalCollected.StringFixed(2)
	if req.Language == user.LanguageUrdu {
		_, _ = buf.WriteString(req.CommitteeName + " - چکر " + strconv.Itoa(req.Cycle) + "\n\n")
		_, _ = buf.WriteString("کل اراکین: " + strconv.Itoa(req.TotalMembers) + "\n")
		_, _ = buf.WriteString("جمع شدہ رقم: " + collected + " روپے")
		return buf.String()
	}

	_, _ = buf.WriteString(req.CommitteeName + " - Cycle " + strconv.Itoa(req.Cycle) + "\n\n")
	_, _ = buf.WriteString("Total Members: " + strconv.Itoa(req.TotalMembers) + "\n")
	_, _ = buf.WriteString("Total Collected: " + collected)
	return buf.String()
}

// ReminderPrompt is the instruction sent to the text generator.
func ReminderPrompt(req Request) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	language := "English"
	if req.Language == user.LanguageUrdu {
		language = "Urdu (Urdu script)"
	}
	_, _ = buf.WriteString("You manage a rotating savings committee. Write a short, polite payment reminder in " + language + ".\n\n")
	_, _ = buf.WriteString("Member Name: " + req.MemberName + "\n")
	_, _ = buf.WriteString("Committee Name: " + req.CommitteeName + "\n")
	_, _ = buf.WriteString("Payment Amount: " + req.Amount.StringFixed(2) + "\n")
	_, _ = buf.WriteString("Cycle: " + strconv.Itoa(req.DueCycle) + "\n")
	_, _ = buf.WriteString("Due Date: " + dueDateText(req) + "\n\n")
	_, _ = buf.WriteString("Reply with the message only, under 120 words.")
	return buf.String()
}

func SummaryPrompt(req SummaryRequest) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	language := "English"
	if req.Language == user.LanguageUrdu {
		language = "Urdu (Urdu script)"
	}
	_, _ = buf.WriteString("Write a brief, encouraging cycle summary in " + language + " for the " + req.CommitteeName + " committee.\n")
	_, _ = buf.WriteString("Total Members: " + strconv.Itoa(req.TotalMembers) + "\n")
	_, _ = buf.WriteString("Total Collected: " + req.TotalCollected.StringFixed(2) + "\n")
	_, _ = buf.WriteString("Current Cycle: " + strconv.Itoa(req.Cycle))
	return buf.String()
}
