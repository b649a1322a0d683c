package dashboard

import "errors"

var (
	ErrNoDataset        = errors.New("no dashboard dataset is available")
	ErrWorkbookInvalid  = errors.New("workbook does not contain a KPI sheet")
	ErrUnknownDivision  = errors.New("division not found in dataset")
	ErrFileTooLarge     = errors.New("uploaded file is too large")
	ErrInvalidExtension = errors.New("only .xlsx workbooks are accepted")
)
