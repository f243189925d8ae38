// Package forms holds one struct per submitted form. Validation is
// all-or-nothing: any failing field blocks the submit and the handler
// redisplays the form with the returned per-field messages.
package forms

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to its validation message. A nil map means
// the submission passed.
type Errors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report errors under the submitted field name, not the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	return v
}

func check(form any) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	errs := Errors{}
	for _, fe := range err.(validator.ValidationErrors) {
		errs[fe.Field()] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	}
	return "Invalid value."
}

type PostForm struct {
	Title    string `form:"title" validate:"required"`
	Subtitle string `form:"subtitle" validate:"required"`
	ImgURL   string `form:"img_url" validate:"required,url"`
	Body     string `form:"body" validate:"required"`
}

func NewPostForm(v url.Values) *PostForm {
	return &PostForm{
		Title:    strings.TrimSpace(v.Get("title")),
		Subtitle: strings.TrimSpace(v.Get("subtitle")),
		ImgURL:   strings.TrimSpace(v.Get("img_url")),
		Body:     v.Get("body"),
	}
}

func (f *PostForm) Validate() Errors { return check(f) }

type RegisterForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func NewRegisterForm(v url.Values) *RegisterForm {
	return &RegisterForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

func (f *RegisterForm) Validate() Errors { return check(f) }

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func NewLoginForm(v url.Values) *LoginForm {
	return &LoginForm{
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

func (f *LoginForm) Validate() Errors { return check(f) }

type CommentForm struct {
	Text string `form:"comment_text" validate:"required"`
}

func NewCommentForm(v url.Values) *CommentForm {
	return &CommentForm{Text: v.Get("comment_text")}
}

func (f *CommentForm) Validate() Errors { return check(f) }

type ContactForm struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone"`
	Message string `form:"message" validate:"required"`
}

func NewContactForm(v url.Values) *ContactForm {
	return &ContactForm{
		Name:    strings.TrimSpace(v.Get("name")),
		Email:   strings.TrimSpace(v.Get("email")),
		Phone:   strings.TrimSpace(v.Get("phone")),
		Message: strings.TrimSpace(v.Get("message")),
	}
}

func (f *ContactForm) Validate() Errors { return check(f) }
