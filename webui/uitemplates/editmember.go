package uitemplates

import "html/template"

type EditMemberParams struct {
	IsNew     bool
	UserError string

	ID       string
	PhotoRef string
	PhotoURL string
	Initial  string

	Name             string
	Gender           string
	BirthDate        string
	Category         string
	RegistrationDate string
	District         string
	Contact1Number   string
	Contact1Relation string
	Contact2Number   string
	Contact2Relation string
	Address          string
	Education1       string
	Education2       string
	Education3       string
	Completion       string
	ReceivingTeacher string
	Notes            string
}

var editMemberText = `{{define "title"}}{{if .IsNew}}새친구 등록{{else}}새친구 정보{{end}}{{end}}

{{define "alert"}}
{{- if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end -}}
{{end}}

{{define "content"}}
<div class="col-md-6">
  <div class="mb-3 text-center">
    {{if .PhotoURL}}
    <img src="{{.PhotoURL}}" alt="사진" width="225" height="225" class="rounded object-fit-cover">
    {{else}}
    <span class="d-inline-flex align-items-center justify-content-center rounded bg-primary text-white display-3" style="width:225px;height:225px">{{.Initial}}</span>
    {{end}}
  </div>

  <form method="POST" action="/upload-photo" enctype="multipart/form-data" class="mb-4">
    <input type="hidden" name="id" value="{{.ID}}">
    <div class="input-group">
      <input type="file" class="form-control" name="photo" accept="image/*" required>
      <input type="submit" class="btn btn-outline-primary" value="사진 선택">
    </div>
  </form>

  <form method="POST" action="/edit-member">
    <input type="hidden" name="id" value="{{.ID}}">
    <input type="hidden" name="photo" value="{{.PhotoRef}}">

    <div class="mb-3">
      <label class="form-label" for="name">이름</label>
      <input type="text" class="form-control" name="name" id="name" value="{{.Name}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="gender">성별</label>
      <select class="form-select" name="gender" id="gender">
        <option value="">선택</option>
        <option value="남" {{if eq .Gender "남"}}selected{{end}}>남</option>
        <option value="여" {{if eq .Gender "여"}}selected{{end}}>여</option>
      </select>
    </div>

    <div class="mb-3">
      <label class="form-label" for="birth-date">생년월일</label>
      <input type="date" class="form-control" name="birth-date" id="birth-date" value="{{.BirthDate}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="category">구분</label>
      <select class="form-select" name="category" id="category">
        <option value="">선택</option>
        <option value="새친구" {{if eq .Category "새친구"}}selected{{end}}>새친구</option>
        <option value="방문" {{if eq .Category "방문"}}selected{{end}}>방문</option>
      </select>
    </div>

    <div class="mb-3">
      <label class="form-label" for="registration-date">등록일자</label>
      <input type="date" class="form-control" name="registration-date" id="registration-date" value="{{.RegistrationDate}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="district">교구</label>
      <select class="form-select" name="district" id="district">
        <option value="">선택</option>
        <option value="1교구" {{if eq .District "1교구"}}selected{{end}}>1교구</option>
        <option value="2교구" {{if eq .District "2교구"}}selected{{end}}>2교구</option>
        <option value="3교구" {{if eq .District "3교구"}}selected{{end}}>3교구</option>
        <option value="4교구" {{if eq .District "4교구"}}selected{{end}}>4교구</option>
      </select>
    </div>

    <div class="mb-3">
      <label class="form-label" for="contact1-number">연락처1</label>
      <div class="input-group">
        <input type="text" class="form-control" name="contact1-number" id="contact1-number" value="{{.Contact1Number}}" placeholder="전화번호">
        <select class="form-select" name="contact1-relation" style="max-width:8rem">
          <option value="">관계</option>
          <option value="부" {{if eq .Contact1Relation "부"}}selected{{end}}>부</option>
          <option value="모" {{if eq .Contact1Relation "모"}}selected{{end}}>모</option>
          <option value="기타" {{if eq .Contact1Relation "기타"}}selected{{end}}>기타</option>
        </select>
      </div>
    </div>

    <div class="mb-3">
      <label class="form-label" for="contact2-number">연락처2</label>
      <div class="input-group">
        <input type="text" class="form-control" name="contact2-number" id="contact2-number" value="{{.Contact2Number}}" placeholder="전화번호">
        <select class="form-select" name="contact2-relation" style="max-width:8rem">
          <option value="">관계</option>
          <option value="부" {{if eq .Contact2Relation "부"}}selected{{end}}>부</option>
          <option value="모" {{if eq .Contact2Relation "모"}}selected{{end}}>모</option>
          <option value="기타" {{if eq .Contact2Relation "기타"}}selected{{end}}>기타</option>
        </select>
      </div>
    </div>

    <div class="mb-3">
      <label class="form-label" for="address">주소</label>
      <input type="text" class="form-control" name="address" id="address" value="{{.Address}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="education1">교육 1차</label>
      <input type="date" class="form-control" name="education1" id="education1" value="{{.Education1}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="education2">교육 2차</label>
      <input type="date" class="form-control" name="education2" id="education2" value="{{.Education2}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="education3">교육 3차</label>
      <input type="date" class="form-control" name="education3" id="education3" value="{{.Education3}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="completion">등반 (수료일)</label>
      <input type="date" class="form-control" name="completion" id="completion" value="{{.Completion}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="receiving-teacher">인수교사</label>
      <input type="text" class="form-control" name="receiving-teacher" id="receiving-teacher" value="{{.ReceivingTeacher}}">
    </div>

    <div class="mb-3">
      <label class="form-label" for="notes">메모</label>
      <textarea class="form-control" name="notes" id="notes" rows="4">{{.Notes}}</textarea>
    </div>

    <div class="d-flex gap-2 mb-5">
      <input type="submit" class="btn btn-primary flex-fill" value="저장">
      <a href="/cancel-edit" class="btn btn-secondary flex-fill">취소</a>
    </div>
  </form>

  {{if not .IsNew}}
  <form method="POST" action="/delete-member" onsubmit="return confirm('정말 삭제하시겠습니까?')">
    <input type="hidden" name="id" value="{{.ID}}">
    <input type="submit" class="btn btn-danger w-100" value="삭제">
  </form>
  {{end}}
</div>
{{end}}
`

var EditMemberTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(editMemberText))
