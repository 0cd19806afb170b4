package uitemplates

import "html/template"

type LogInParams struct {
	UserError string
}

var logInText = `{{define "title"}}로그인{{end}}

{{define "alert"}}
{{- if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end -}}
{{end}}

{{define "content"}}
<form method="POST" class="col-md-4">
  <div class="mb-3">
    <label for="password" class="form-label">비밀번호</label>
    <input type="password" class="form-control" name="password" id="password" required>
  </div>
  <input type="submit" class="btn btn-primary" value="로그인">
</form>
{{end}}
`

var LogInTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(logInText))
