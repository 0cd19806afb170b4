package uitemplates

import "html/template"

type FiltersParams struct {
	ExcludeCompleted  bool
	ExcludeVisitors   bool
	SinceRegistration bool
	WindowMonths      int
}

var filtersText = `{{define "title"}}필터{{end}}

{{define "content"}}
<form method="POST" action="/filters" class="col-md-4">
  <div class="form-check mb-2">
    <input class="form-check-input" type="checkbox" name="exclude-completed" id="exclude-completed" {{if .ExcludeCompleted}}checked{{end}}>
    <label class="form-check-label" for="exclude-completed">등반제외</label>
  </div>
  <div class="form-check mb-2">
    <input class="form-check-input" type="checkbox" name="exclude-visitors" id="exclude-visitors" {{if .ExcludeVisitors}}checked{{end}}>
    <label class="form-check-label" for="exclude-visitors">방문제외</label>
  </div>
  <div class="form-check mb-2">
    <input class="form-check-input" type="checkbox" name="since-registration" id="since-registration" {{if .SinceRegistration}}checked{{end}}>
    <label class="form-check-label" for="since-registration">등록일자로부터</label>
  </div>

  <hr>

  <div class="form-check mb-2">
    <input class="form-check-input" type="radio" name="window-months" id="window-1" value="1" {{if eq .WindowMonths 1}}checked{{end}}>
    <label class="form-check-label" for="window-1">최근 1개월</label>
  </div>
  <div class="form-check mb-2">
    <input class="form-check-input" type="radio" name="window-months" id="window-2" value="2" {{if eq .WindowMonths 2}}checked{{end}}>
    <label class="form-check-label" for="window-2">최근 2개월</label>
  </div>
  <div class="form-check mb-2">
    <input class="form-check-input" type="radio" name="window-months" id="window-3" value="3" {{if eq .WindowMonths 3}}checked{{end}}>
    <label class="form-check-label" for="window-3">최근 3개월</label>
  </div>

  <div class="mt-3 d-flex gap-2">
    <a href="/" class="btn btn-secondary flex-fill">취소</a>
    <input type="submit" class="btn btn-info flex-fill" value="확인">
  </div>
</form>
{{end}}
`

var FiltersTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(filtersText))
