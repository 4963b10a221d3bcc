package soulauth

import (
	"html/template"
	"net/http"
)

// The popup's server-rendered response never redirects back into the
// SPA. It posts one structured message to the window that opened it,
// addressed to the configured frontend origin, and closes. html/template
// JSON-encodes the payload and origin in script context, so profile
// values chosen by the user (or a provider) cannot break out of the
// script element.
var handoffTmpl = template.Must(template.New("handoff").Parse(`<!DOCTYPE html>
<html>
<head><title>Signing in…</title></head>
<body>
<script>
  if (window.opener) {
    window.opener.postMessage({{.Payload}}, {{.Origin}});
  }
  window.close();
</script>
<p>You can close this window.</p>
</body>
</html>
`))

// HandoffUser is the user fragment delivered alongside the token.
type HandoffUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandoffResult is the message posted to the opener window. Exactly
// one of Token/User or Error is set.
type HandoffResult struct {
	Token string       `json:"token,omitempty"`
	User  *HandoffUser `json:"user,omitempty"`
	Error string       `json:"error,omitempty"`
}

// SuccessHandoff builds the success message for a logged-in user.
func SuccessHandoff(token string, user *User) *HandoffResult {
	return &HandoffResult{
		Token: token,
		User:  &HandoffUser{Name: user.Name, Email: user.Email},
	}
}

// FailureHandoff builds the error message variant.
func FailureHandoff(message string) *HandoffResult {
	return &HandoffResult{Error: message}
}

// RenderHandoff writes the handoff page carrying result to w.
func RenderHandoff(w http.ResponseWriter, origin string, result *HandoffResult) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return handoffTmpl.Execute(w, struct {
		Payload *HandoffResult
		Origin  string
	}{result, origin})
}
