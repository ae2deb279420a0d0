package apperr

import "github.com/tuanvumaihuynh/bipagem/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	MissingFileErrorCode     = "MISSING_FILE"
	UnsupportedFileErrorCode = "UNSUPPORTED_FILE_TYPE"
	UnreadableSheetErrorCode = "UNREADABLE_SPREADSHEET"
	MissingColumnsErrorCode  = "MISSING_COLUMNS"
	CatalogEmptyErrorCode    = "CATALOG_EMPTY"
	ProductNotFoundErrorCode = "PRODUCT_NOT_FOUND"
	AmbiguousCodeErrorCode   = "AMBIGUOUS_CODE"
	SheetFeedDisabledCode    = "SHEET_FEED_DISABLED"
	SheetFeedUnavailableCode = "SHEET_FEED_UNAVAILABLE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	MissingFileErr     = zerror.NewBadRequest(MissingFileErrorCode, "a spreadsheet file is required")
	UnsupportedFileErr = zerror.NewBadRequest(UnsupportedFileErrorCode, "send a valid .xlsx or .csv file")
	UnreadableSheetErr = zerror.NewBadRequest(UnreadableSheetErrorCode, "the spreadsheet could not be read")
	MissingColumnsErr  = zerror.NewValidationFailed(MissingColumnsErrorCode, "the spreadsheet is missing required columns")

	CatalogEmptyErr    = zerror.NewUnprocessableEntity(CatalogEmptyErrorCode, "load the catalog first")
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
	AmbiguousCodeErr   = zerror.NewConflict(AmbiguousCodeErrorCode, "code matches products in more than one store, choose a store")

	SheetFeedDisabledErr    = zerror.NewNotImplemented(SheetFeedDisabledCode, "sheet feed is not configured")
	SheetFeedUnavailableErr = zerror.NewBadGateway(SheetFeedUnavailableCode, "sheet feed could not be fetched")
)
