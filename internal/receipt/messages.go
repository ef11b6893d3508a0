package receipt

import (
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/i18n"
)

// Problem codes reported by the receipt endpoints.
const (
	CodeInvalidReference   = "InvalidReference"
	CodeReferenceNotFound  = "ReferenceNotFound"
	CodeDuplicateReceipt   = "DuplicateReceipt"
	CodeInvalidPrice       = "InvalidPrice"
	CodeInvalidQuantity    = "InvalidQuantity"
	CodePersistenceError   = "PersistenceError"
	CodeBatchCreationError = "BatchCreationError"
	CodeInvalidDateFilter  = "InvalidDateFilter"
)

const priceNoteKey = "receipt.price_note"

func init() {
	i18n.Register(language.Vietnamese, map[string]string{
		"InvalidReference.title":        "Mã tham chiếu không hợp lệ",
		"InvalidReference.detail":       "Trường %s có giá trị không hợp lệ: %s",
		"InvalidReference.suggestion":   "Kiểm tra lại mã nhà cung cấp, phiếu đặt hàng và sản phẩm.",
		"ReferenceNotFound.title":       "Không tìm thấy dữ liệu tham chiếu",
		"ReferenceNotFound.detail":      "Không tìm thấy %s: %s",
		"ReferenceNotFound.suggestion":  "Đảm bảo nhà cung cấp, phiếu đặt hàng và sản phẩm đã được tạo.",
		"DuplicateReceipt.title":        "Phiếu nhập kho đã tồn tại",
		"DuplicateReceipt.detail":       "Phiếu đặt hàng %s đã được nhập kho.",
		"DuplicateReceipt.suggestion":   "Mỗi phiếu đặt hàng chỉ được nhập kho một lần.",
		"InvalidPrice.title":            "Giá nhập không hợp lệ",
		"InvalidPrice.detail":           "Giá nhập tại %s của sản phẩm %s phải là số lớn hơn 0.",
		"InvalidPrice.suggestion":       "Nhập giá là một số dương.",
		"InvalidQuantity.title":         "Số lượng không hợp lệ",
		"InvalidQuantity.detail":        "Số lượng tại %s của sản phẩm %s phải lớn hơn 0.",
		"InvalidQuantity.suggestion":    "Nhập số lượng là một số dương.",
		"PersistenceError.title":        "Không lưu được phiếu nhập kho",
		"PersistenceError.detail":       "Đã xảy ra lỗi khi lưu phiếu nhập kho.",
		"PersistenceError.suggestion":   "Vui lòng thử lại sau.",
		"BatchCreationError.title":      "Không cập nhật được lô hàng",
		"BatchCreationError.detail":     "Lỗi khi cập nhật lô %[2]s của sản phẩm %[1]s.",
		"BatchCreationError.suggestion": "Phiếu nhập đã được lưu; kiểm tra tồn kho trước khi thử lại.",
		"InvalidDateFilter.title":       "Bộ lọc ngày không hợp lệ",
		"InvalidDateFilter.detail":      "Tham số %s có giá trị không hợp lệ: %s",
		"InvalidDateFilter.suggestion":  "Dùng date = 0, 1, 7, 30, 60 hoặc custom kèm customDate dạng YYYY-MM-DD.",
		priceNoteKey:                    "Nhập theo phiếu %s",
	})
	i18n.Register(language.English, map[string]string{
		"InvalidReference.title":        "Invalid reference",
		"InvalidReference.detail":       "Field %s has an invalid value: %s",
		"InvalidReference.suggestion":   "Check the supplier, order form and product ids.",
		"ReferenceNotFound.title":       "Reference not found",
		"ReferenceNotFound.detail":      "No %s found: %s",
		"ReferenceNotFound.suggestion":  "Make sure the supplier, order form and products exist.",
		"DuplicateReceipt.title":        "Receipt already exists",
		"DuplicateReceipt.detail":       "Order form %s has already been received.",
		"DuplicateReceipt.suggestion":   "Each order form can be received only once.",
		"InvalidPrice.title":            "Invalid input price",
		"InvalidPrice.detail":           "The input price at %s for product %s must be a number greater than 0.",
		"InvalidPrice.suggestion":       "Enter a positive price.",
		"InvalidQuantity.title":         "Invalid quantity",
		"InvalidQuantity.detail":        "The quantity at %s for product %s must be greater than 0.",
		"InvalidQuantity.suggestion":    "Enter a positive quantity.",
		"PersistenceError.title":        "Receipt could not be saved",
		"PersistenceError.detail":       "An error occurred while saving the receipt.",
		"PersistenceError.suggestion":   "Please try again later.",
		"BatchCreationError.title":      "Batch could not be updated",
		"BatchCreationError.detail":     "Updating batch %[2]s of product %[1]s failed.",
		"BatchCreationError.suggestion": "The receipt was saved; check stock before retrying.",
		"InvalidDateFilter.title":       "Invalid date filter",
		"InvalidDateFilter.detail":      "Parameter %s has an invalid value: %s",
		"InvalidDateFilter.suggestion":  "Use date = 0, 1, 7, 30, 60 or custom with customDate as YYYY-MM-DD.",
		priceNoteKey:                    "imported by receipt %s",
	})
}

// priceNote is the price-history note in the configured display language.
func priceNote(code string) string {
	return i18n.Printer(i18n.Fallback()).Sprintf(priceNoteKey, code)
}
