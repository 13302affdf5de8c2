package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind : catégorie d'erreur exposée aux appelants
type Kind int

const (
	Unknown Kind = iota
	NotAuthenticated
	StoreUnavailable
	ValidationFailed
	NotFound
)

func (k Kind) String() string {
	switch k {
	case NotAuthenticated:
		return "not_authenticated"
	case StoreUnavailable:
		return "store_unavailable"
	case ValidationFailed:
		return "validation_failed"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error : erreur discriminée du cœur social.
// Op identifie l'opération d'origine (ex: "feed.ToggleLike").
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is permet errors.Is(err, &errs.Error{Kind: ...})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// E construit une erreur typée
func E(kind Kind, op, msg string, err error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf extrait la catégorie (Unknown si l'erreur n'est pas typée)
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Status : code HTTP correspondant à la catégorie
func Status(err error) int {
	switch KindOf(err) {
	case NotAuthenticated:
		return http.StatusUnauthorized
	case ValidationFailed:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
