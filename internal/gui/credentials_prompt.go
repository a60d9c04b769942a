package gui

import (
	"fmt"

	"openwrt-build/internal/backup"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

type credentialsAnswer struct {
	creds backup.Credentials
	ok    bool
}

func authFailureMessage(host string, rejected backup.Credentials, authErr error) string {
	reason := "the router refused the login"
	if authErr != nil {
		reason = authErr.Error()
	}
	if rejected.Password == "" {
		return fmt.Sprintf("%s@%s needs a password.\n(%s)", rejected.User, host, reason)
	}
	return fmt.Sprintf("Authentication as %s@%s failed, try again.\n(%s)", rejected.User, host, reason)
}

// credentialsPrompt asks for a new SSH login each time the router rejects
// one. The returned func blocks and must run off the UI goroutine.
func (mv *mainView) credentialsPrompt(host string) backup.CredentialsPrompt {
	return func(rejected backup.Credentials, authErr error) (backup.Credentials, bool) {
		mv.log.Warn().Err(authErr).Str("host", host).Str("user", rejected.User).Msg("ssh login rejected")

		answerCh := make(chan credentialsAnswer, 1)
		mv.runOnUI(func() {
			userEntry := widget.NewEntry()
			userEntry.SetText(rejected.User)
			passwordEntry := widget.NewPasswordEntry()

			reason := widget.NewLabel(authFailureMessage(host, rejected, authErr))
			reason.Wrapping = fyne.TextWrapWord

			form := dialog.NewForm(
				"Router login",
				"Connect",
				"Cancel",
				[]*widget.FormItem{
					widget.NewFormItem("", reason),
					widget.NewFormItem("User", userEntry),
					widget.NewFormItem("Password", passwordEntry),
				},
				func(ok bool) {
					answerCh <- credentialsAnswer{
						creds: backup.Credentials{User: userEntry.Text, Password: passwordEntry.Text},
						ok:    ok,
					}
				},
				mv.window,
			)
			form.Resize(fyne.NewSize(460, 240))
			form.SetOnClosed(func() {
				select {
				case answerCh <- credentialsAnswer{}:
				default:
				}
			})
			form.Show()
			mv.window.Canvas().Focus(passwordEntry)
		})

		answer := <-answerCh
		return answer.creds, answer.ok
	}
}
