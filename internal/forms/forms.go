// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package forms decodes the HTML forms of the site and validates them with
// go-playground/validator, producing Portuguese messages for the user.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"cervejas/internal/models"
)

// Login is the login form.
type Login struct {
	Username string `validate:"required" label:"O username"`
	Password string `validate:"required" label:"A senha"`
}

// Register is the sign-up form.
type Register struct {
	Username        string `validate:"required,min=3,max=50" label:"O username"`
	Password        string `validate:"required,min=6,max=100" label:"A senha"`
	ConfirmPassword string `validate:"required,eqfield=Password" label:"A confirmação da senha"`
}

// Post is the create/edit post form.
type Post struct {
	Title    string `validate:"required,max=300" label:"O título"`
	Author   string `validate:"required,max=100" label:"O autor"`
	Category string `validate:"required,max=100" label:"A categoria"`
	Content  string `validate:"required,max=100000" label:"O conteúdo"`
	ImageURL string `validate:"omitempty,http_url,max=2000" label:"A URL da imagem"`
}

// Category is the create/rename category form.
type Category struct {
	Name string `validate:"required,max=100" label:"O nome"`
}

// LoginFromRequest reads the login form. Passwords are taken verbatim.
func LoginFromRequest(r *http.Request) Login {
	return Login{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

// RegisterFromRequest reads the sign-up form.
func RegisterFromRequest(r *http.Request) Register {
	return Register{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
}

// PostFromRequest reads the post form.
func PostFromRequest(r *http.Request) Post {
	return Post{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Author:   strings.TrimSpace(r.PostFormValue("author")),
		Category: strings.TrimSpace(r.PostFormValue("category")),
		Content:  strings.TrimSpace(r.PostFormValue("content")),
		ImageURL: strings.TrimSpace(r.PostFormValue("imageUrl")),
	}
}

// PostFromModel fills the form for editing an existing post.
func PostFromModel(p *models.Post) Post {
	return Post{
		Title:    p.Title,
		Author:   p.Author,
		Category: p.Category,
		Content:  p.Content,
		ImageURL: p.ImageURL,
	}
}

// Input converts the form into a create payload. Date and views are
// stamped by the caller.
func (f Post) Input() models.PostInput {
	return models.PostInput{
		Title:    f.Title,
		Author:   f.Author,
		Category: f.Category,
		Content:  f.Content,
		ImageURL: f.ImageURL,
	}
}

// Patch converts the form into a partial update of the editable fields.
func (f Post) Patch() models.PostPatch {
	return models.PostPatch{
		Title:    &f.Title,
		Author:   &f.Author,
		Category: &f.Category,
		Content:  &f.Content,
		ImageURL: &f.ImageURL,
	}
}

// CategoryFromRequest reads the category form.
func CategoryFromRequest(r *http.Request) Category {
	return Category{Name: strings.TrimSpace(r.PostFormValue("name"))}
}

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// Errors validates form and returns a message per invalid field, keyed by
// the Go field name. It returns nil when the form is valid.
func Errors(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": "Formulário inválido."}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.StructField()]; !seen {
			out[fe.StructField()] = message(fe)
		}
	}
	return out
}

// Validate returns the first validation message, or "" when form is valid.
// Fields are checked in declaration order.
func Validate(form any) string {
	err := validate.Struct(form)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Formulário inválido."
	}
	return message(verrs[0])
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		if strings.HasPrefix(label, "A ") {
			return label + " é obrigatória."
		}
		return label + " é obrigatório."
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres.", label, fe.Param())
	case "eqfield":
		return "As senhas não coincidem."
	case "http_url":
		return label + " deve ser um endereço http(s) válido."
	default:
		return label + " é inválido."
	}
}
