package httpx

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/i18n"
)

// Codes shared by every handler.
const (
	CodeInvalidBody = "InvalidBody"
	CodeNotFound    = "NotFound"
	CodeInternal    = "Internal"
)

func init() {
	i18n.Register(language.Vietnamese, map[string]string{
		"InvalidBody.title":      "Dữ liệu gửi lên không hợp lệ",
		"InvalidBody.detail":     "Không đọc được nội dung yêu cầu: %s",
		"InvalidBody.suggestion": "Kiểm tra lại định dạng JSON của yêu cầu.",
		"NotFound.title":         "Không tìm thấy",
		"NotFound.detail":        "Không tìm thấy %s với mã %s.",
		"NotFound.suggestion":    "Kiểm tra lại mã đã nhập.",
		"Internal.title":         "Lỗi hệ thống",
		"Internal.detail":        "Đã xảy ra lỗi không mong muốn.",
		"Internal.suggestion":    "Vui lòng thử lại sau hoặc liên hệ quản trị viên.",
	})
	i18n.Register(language.English, map[string]string{
		"InvalidBody.title":      "Invalid request body",
		"InvalidBody.detail":     "The request body could not be read: %s",
		"InvalidBody.suggestion": "Check the JSON format of the request.",
		"NotFound.title":         "Not found",
		"NotFound.detail":        "No %s found with id %s.",
		"NotFound.suggestion":    "Check the id you entered.",
		"Internal.title":         "Internal error",
		"Internal.detail":        "An unexpected error occurred.",
		"Internal.suggestion":    "Please try again later or contact an administrator.",
	})
}

// ProblemDetail is the error body returned by JSON endpoints.
type ProblemDetail struct {
	Code       string `json:"code"`
	Status     int    `json:"status"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Problem writes a problem body for code. Title, detail and suggestion are looked up
// as "<code>.title", "<code>.detail" and "<code>.suggestion" in the language the
// client asked for; args feed the detail message.
func Problem(w http.ResponseWriter, r *http.Request, status int, code string, args ...any) {
	JSON(w, status, BuildProblem(r, status, code, args...))
}

// BuildProblem renders the problem body without writing it.
func BuildProblem(r *http.Request, status int, code string, args ...any) ProblemDetail {
	p := i18n.Printer(i18n.Match(r.Header.Get("Accept-Language")))
	pd := ProblemDetail{
		Code:     code,
		Status:   status,
		Title:    p.Sprintf(code + ".title"),
		Instance: r.URL.Path,
	}
	if i18n.Has(code + ".detail") {
		pd.Detail = p.Sprintf(code+".detail", args...)
	}
	if i18n.Has(code + ".suggestion") {
		pd.Suggestion = p.Sprintf(code + ".suggestion")
	}
	return pd
}

// InvalidBody reports a request body that failed to decode.
func InvalidBody(w http.ResponseWriter, r *http.Request, err error) {
	Problem(w, r, http.StatusBadRequest, CodeInvalidBody, err.Error())
}

// NotFound reports a missing entity of the given kind.
func NotFound(w http.ResponseWriter, r *http.Request, kind, id string) {
	Problem(w, r, http.StatusNotFound, CodeNotFound, kind, id)
}

// Internal reports an unexpected failure without leaking its cause.
func Internal(w http.ResponseWriter, r *http.Request) {
	Problem(w, r, http.StatusInternalServerError, CodeInternal)
}
