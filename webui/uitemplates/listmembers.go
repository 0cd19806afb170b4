package uitemplates

import "html/template"

type ListMembersParams struct {
	Alert  string
	Search string
	Sort   string
	Rows   []ListMemberRow
}

type ListMemberRow struct {
	EditLink  string
	Name      string
	Initial   string
	Gender    string
	Age       int
	BirthDate string
	PhotoURL  string

	Education      []bool
	CompletionDate string
}

var listMembersText = `{{define "title"}}새친구 목록{{end}}

{{define "alert"}}
{{- if .Alert}}<div class="alert alert-danger">{{.Alert}}</div>{{end -}}
{{end}}

{{define "content"}}
<form method="GET" action="/" class="row g-2 mb-3">
  <div class="col-auto">
    <input type="text" class="form-control" name="q" value="{{.Search}}" placeholder="이름 검색">
  </div>
  <div class="col-auto">
    <select class="form-select" name="sort" onchange="this.form.submit()">
      <option value="date" {{if eq .Sort "date"}}selected{{end}}>등록일순</option>
      <option value="name" {{if eq .Sort "name"}}selected{{end}}>이름순</option>
      <option value="age" {{if eq .Sort "age"}}selected{{end}}>나이순</option>
    </select>
  </div>
  <div class="col-auto">
    <input type="submit" class="btn btn-outline-secondary" value="검색">
  </div>
  <div class="col-auto">
    <a class="btn btn-outline-secondary" href="/filters">필터</a>
  </div>
</form>

{{if not .Rows}}
<p class="text-center text-secondary mt-5">등록된 새친구가 없습니다</p>
{{end}}

<ul class="list-group">
{{range .Rows}}
  <li class="list-group-item">
    <a href="{{.EditLink}}" class="d-flex text-decoration-none text-body align-items-center">
      {{if .PhotoURL}}
      <img src="{{.PhotoURL}}" alt="{{.Name}}" width="60" height="60" class="rounded object-fit-cover">
      {{else}}
      <span class="d-inline-flex align-items-center justify-content-center rounded bg-primary text-white fs-4" style="width:60px;height:60px">{{.Initial}}</span>
      {{end}}
      <span class="ms-3">
        <strong>{{.Name}}</strong> {{.Gender}} {{.Age}}세<br>
        <small class="text-secondary">{{.BirthDate}}</small>
      </span>
      <span class="ms-auto">
        {{if .CompletionDate}}
        ⭐ {{.CompletionDate}}
        {{else}}
        {{range .Education}}{{if .}}☑{{else}}☐{{end}} {{end}}
        {{end}}
      </span>
    </a>
  </li>
{{end}}
</ul>

<a href="/add-member" class="btn btn-primary rounded-circle position-fixed fs-3" style="right:20px;bottom:20px;width:60px;height:60px">+</a>
{{end}}
`

var ListMembersTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(listMembersText))
