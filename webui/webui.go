// Package webui serves the staff-facing roster screens.
package webui

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"newfriends/dblayer"
	"newfriends/dbtypes"
	"newfriends/photocache"
	"newfriends/roster"
	"newfriends/webui/uitemplates"

	"github.com/golang/glog"
)

const sessionCookieName = "NewFriends-Session"

// SessionStore is the slice of the database the UI needs for login and
// session handling.
type SessionStore interface {
	SignIn(ctx context.Context, password string) (*dbtypes.Session, error)
	AccountFromSessionCookie(ctx context.Context, cookie string) (string, error)
	DeleteSession(ctx context.Context, cookie string) error
}

type WebUI struct {
	db         SessionStore
	controller *roster.Controller
	photos     *photocache.Cache
}

func New(db SessionStore, controller *roster.Controller, photos *photocache.Cache) *WebUI {
	return &WebUI{
		db:         db,
		controller: controller,
		photos:     photos,
	}
}

func (u *WebUI) Register(m *http.ServeMux) {
	m.HandleFunc("/", u.homeHandler)
	m.HandleFunc("/log-in", u.logInHandler)
	m.HandleFunc("/log-out", u.logOutHandler)
	m.HandleFunc("/filters", u.filtersHandler)
	m.HandleFunc("/add-member", u.addMemberHandler)
	m.HandleFunc("/edit-member", u.editMemberHandler)
	m.HandleFunc("/cancel-edit", u.cancelEditHandler)
	m.HandleFunc("/delete-member", u.deleteMemberHandler)
	m.HandleFunc("/upload-photo", u.uploadPhotoHandler)
	m.HandleFunc("/photo", u.photoHandler)
}

// getLoggedInAccount loads the account associated with the session cookie in
// the request, if it exists.
func (u *WebUI) getLoggedInAccount(ctx context.Context, r *http.Request) (string, error) {
	var sessionCookie *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		// No session cookie; user is not logged in.
		glog.Infof("No logged-in user because there was no session cookie.")
		return "", nil
	}

	return u.db.AccountFromSessionCookie(ctx, sessionCookie.Value)
}

// requireLogin resolves the logged-in account, redirecting to the login page
// when there is none.  ok reports whether the caller should continue.
func (u *WebUI) requireLogin(w http.ResponseWriter, r *http.Request) (ok bool) {
	account, err := u.getLoggedInAccount(r.Context(), r)
	if err != nil {
		glog.Errorf("Error while getting logged-in account: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return false
	}
	if account == "" {
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return false
	}
	return true
}

func (u *WebUI) render(w http.ResponseWriter, tmpl *template.Template, params any) {
	content := bytes.Buffer{}
	if err := tmpl.Execute(&content, params); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if _, err := io.Copy(w, &content); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing output: %v", err)
		return
	}
}

// homeHandler renders the filtered roster list.
func (u *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	if !u.requireLogin(w, r) {
		return
	}

	alert := ""

	sortBy := dblayer.SortBy(r.FormValue("sort"))
	switch sortBy {
	case dblayer.SortByName, dblayer.SortByDate, dblayer.SortByAge:
	default:
		sortBy = dblayer.SortByDate
	}

	u.controller.SetSortBy(sortBy)

	// The collection is shared with the mobile client, so every visit to
	// the list re-fetches it.  Rosters are small.
	if err := u.controller.Load(ctx); err != nil {
		glog.Errorf("Error while loading roster: %v", err)
		alert = "데이터를 불러오지 못했습니다."
	}

	search := r.FormValue("q")

	params := &uitemplates.ListMembersParams{
		Alert:  alert,
		Search: search,
		Sort:   string(sortBy),
	}
	for _, d := range u.controller.Visible(search) {
		params.Rows = append(params.Rows, uitemplates.ListMemberRow{
			EditLink:       editMemberLink(d.ID),
			Name:           d.Name,
			Initial:        initial(d.Name),
			Gender:         d.Gender,
			Age:            d.Age,
			BirthDate:      d.BirthDate,
			PhotoURL:       u.controller.PhotoURL(d.ID),
			Education:      d.Education[:],
			CompletionDate: d.CompletionDate,
		})
	}

	u.render(w, uitemplates.ListMembersTemplate, params)
}

func editMemberLink(id string) string {
	q := url.Values{}
	q.Add("id", id)
	editLink := &url.URL{
		Path:     "/edit-member",
		RawQuery: q.Encode(),
	}
	return editLink.String()
}

// initial returns the first rune of the name for the placeholder avatar.
func initial(name string) string {
	for _, r := range name {
		return string(r)
	}
	return "?"
}

// logInHandler renders the login page and processes the login form.
func (u *WebUI) logInHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-in" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	account, err := u.getLoggedInAccount(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in account: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if account != "" {
		// User is already logged in.  Send them back home.
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		session, err := u.db.SignIn(ctx, r.PostForm.Get("password"))
		if errors.Is(err, dblayer.ErrWrongPassword) || errors.Is(err, dblayer.ErrPasswordMustNotBeEmpty) {
			u.render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{
				UserError: "비밀번호를 확인하세요",
			})
			return
		}
		if err != nil {
			glog.Errorf("Error while signing in: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    session.Cookie,
			SameSite: http.SameSiteStrictMode,
			Expires:  session.Expires,
		})
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	u.render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{})
}

func (u *WebUI) logOutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, cookie := range r.Cookies() {
		if cookie.Name == sessionCookieName {
			if err := u.db.DeleteSession(ctx, cookie.Value); err != nil {
				glog.Errorf("Error while deleting session: %v", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, MaxAge: -1})
	http.Redirect(w, r, "/log-in", http.StatusFound)
}

// filtersHandler renders the filter panel and applies the staged filter
// configuration on confirm.  Cancel is a plain link back to the list, so the
// staged values in the form are simply discarded.
func (u *WebUI) filtersHandler(w http.ResponseWriter, r *http.Request) {
	if !u.requireLogin(w, r) {
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		f := roster.Filters{
			ExcludeCompleted:  r.PostForm.Get("exclude-completed") != "",
			ExcludeVisitors:   r.PostForm.Get("exclude-visitors") != "",
			SinceRegistration: r.PostForm.Get("since-registration") != "",
			WindowMonths:      1,
		}
		switch r.PostForm.Get("window-months") {
		case "2":
			f.WindowMonths = 2
		case "3":
			f.WindowMonths = 3
		}
		u.controller.ApplyFilters(f)

		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	f := u.controller.Filters()
	u.render(w, uitemplates.FiltersTemplate, &uitemplates.FiltersParams{
		ExcludeCompleted:  f.ExcludeCompleted,
		ExcludeVisitors:   f.ExcludeVisitors,
		SinceRegistration: f.SinceRegistration,
		WindowMonths:      f.WindowMonths,
	})
}

func (u *WebUI) addMemberHandler(w http.ResponseWriter, r *http.Request) {
	if !u.requireLogin(w, r) {
		return
	}

	u.controller.AddNew()
	http.Redirect(w, r, "/edit-member", http.StatusFound)
}

// editMemberHandler renders the detail screen (GET) and processes a save
// (POST).  A failed save keeps the edit screen open so the user can retry.
func (u *WebUI) editMemberHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !u.requireLogin(w, r) {
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		member := memberFromForm(r.PostForm)

		err := u.controller.Save(ctx, member)
		if errors.Is(err, dblayer.ErrNameMustNotBeEmpty) {
			u.renderEditMember(w, r, member, "이름을 입력해주세요.")
			return
		}
		if err != nil {
			glog.Errorf("Error while saving member %s: %v", member.ID, err)
			u.renderEditMember(w, r, member, "저장에 실패했습니다.")
			return
		}

		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if id := r.FormValue("id"); id != "" {
		// Re-selecting the member already being edited would discard
		// staged changes, such as a freshly uploaded photo.
		if editing := u.controller.Editing(); editing == nil || editing.ID != id {
			if !u.controller.Select(id) {
				http.Error(w, "Not Found", http.StatusNotFound)
				return
			}
		}
	}

	member := u.controller.Editing()
	if member == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	u.renderEditMember(w, r, member, "")
}

func (u *WebUI) renderEditMember(w http.ResponseWriter, r *http.Request, member *dbtypes.Member, userError string) {
	// Image resolution failures are logged only; the screen falls back to
	// the initial-letter placeholder.
	photoURL, err := u.photos.Resolve(r.Context(), member.Photo)
	if err != nil {
		glog.Errorf("Error while resolving photo URL for member %s: %v", member.ID, err)
	}

	contact1 := dbtypes.ParseContact(member.Contact1)
	contact2 := dbtypes.ParseContact(member.Contact2)

	u.render(w, uitemplates.EditMemberTemplate, &uitemplates.EditMemberParams{
		IsNew:     member.IsNew(),
		UserError: userError,

		ID:       member.ID,
		PhotoRef: member.Photo,
		PhotoURL: photoURL,
		Initial:  initial(member.Name),

		Name:             member.Name,
		Gender:           member.Gender,
		BirthDate:        member.BirthDate,
		Category:         member.Category,
		RegistrationDate: member.RegistrationDate,
		District:         member.District,
		Contact1Number:   contact1.Number,
		Contact1Relation: contact1.Relation,
		Contact2Number:   contact2.Number,
		Contact2Relation: contact2.Relation,
		Address:          member.Address,
		Education1:       member.Education1,
		Education2:       member.Education2,
		Education3:       member.Education3,
		Completion:       member.Completion,
		ReceivingTeacher: member.ReceivingTeacher,
		Notes:            member.Notes,
	})
}

func memberFromForm(form url.Values) *dbtypes.Member {
	contact1 := dbtypes.Contact{
		Number:   form.Get("contact1-number"),
		Relation: form.Get("contact1-relation"),
	}
	contact2 := dbtypes.Contact{
		Number:   form.Get("contact2-number"),
		Relation: form.Get("contact2-relation"),
	}

	return &dbtypes.Member{
		ID:               form.Get("id"),
		Photo:            form.Get("photo"),
		Name:             form.Get("name"),
		Gender:           form.Get("gender"),
		BirthDate:        form.Get("birth-date"),
		Category:         form.Get("category"),
		RegistrationDate: form.Get("registration-date"),
		District:         form.Get("district"),
		Contact1:         contact1.String(),
		Contact2:         contact2.String(),
		Address:          form.Get("address"),
		Education1:       form.Get("education1"),
		Education2:       form.Get("education2"),
		Education3:       form.Get("education3"),
		Completion:       form.Get("completion"),
		ReceivingTeacher: form.Get("receiving-teacher"),
		Notes:            form.Get("notes"),
	}
}

func (u *WebUI) cancelEditHandler(w http.ResponseWriter, r *http.Request) {
	if !u.requireLogin(w, r) {
		return
	}

	u.controller.Cancel()
	http.Redirect(w, r, "/", http.StatusFound)
}

func (u *WebUI) deleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !u.requireLogin(w, r) {
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	// The target comes from the form, never from the shared edit state;
	// another session may have selected a different member in between.
	id := r.PostForm.Get("id")
	member := u.controller.MemberByID(id)
	if member == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := u.controller.DeleteByID(ctx, id); err != nil {
		glog.Errorf("Error while deleting member %s: %v", id, err)
		u.renderEditMember(w, r, member, "삭제에 실패했습니다.")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// photoHandler redirects to the resolved download URL for a member's photo,
// for clients that want a stable link instead of the embedded signed URL.
func (u *WebUI) photoHandler(w http.ResponseWriter, r *http.Request) {
	if !u.requireLogin(w, r) {
		return
	}

	photoURL := u.controller.PhotoURL(r.FormValue("id"))
	if photoURL == "" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	http.Redirect(w, r, photoURL, http.StatusFound)
}

// uploadPhotoHandler shrinks and uploads a photo for the member being
// edited.  Upload failures are logged, never surfaced; the edit screen keeps
// its placeholder.
func (u *WebUI) uploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !u.requireLogin(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)

	// The owner comes from the form, never from the shared edit state.
	id := r.FormValue("id")
	if id == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		glog.Errorf("Error while reading uploaded photo: %v", err)
		http.Redirect(w, r, editMemberLink(id), http.StatusFound)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		glog.Errorf("Error while reading uploaded photo: %v", err)
		http.Redirect(w, r, editMemberLink(id), http.StatusFound)
		return
	}

	photoRef, err := u.photos.Upload(ctx, data, id)
	if err != nil {
		glog.Errorf("Error while uploading photo for member %s: %v", id, err)
		http.Redirect(w, r, editMemberLink(id), http.StatusFound)
		return
	}

	u.controller.SetMemberPhoto(id, photoRef)
	http.Redirect(w, r, editMemberLink(id), http.StatusFound)
}
