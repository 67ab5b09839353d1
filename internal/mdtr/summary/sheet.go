package summary

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const failuresSheetName = "failures"

// SaveFailuresIndex writes a spreadsheet listing the failed and timed out
// tests of the run, one row each, to be used on the review process.
func (tr *TestRun) SaveFailuresIndex(path string) error {
	sheet := excelize.NewFile()
	defer func() {
		if err := sheet.Close(); err != nil {
			log.Debugf("closing spreadsheet %s: %v", path, err)
		}
	}()

	if err := sheet.SetSheetName("Sheet1", failuresSheetName); err != nil {
		return errors.Wrap(err, "unable to create failures sheet")
	}
	if err := createSheet(sheet, failuresSheetName); err != nil {
		return err
	}
	if err := populateSheet(sheet, failuresSheetName, tr.Failures()); err != nil {
		return err
	}
	if err := sheet.SaveAs(path); err != nil {
		return errors.Wrapf(err, "unable to save failures index %s", path)
	}
	return nil
}

// createSheet creates the excel spreadsheet headers
func createSheet(sheet *excelize.File, sheetName string) error {
	header := map[string]string{
		"A1": "Index", "B1": "Test_Name", "C1": "Result",
		"D1": "Duration_Seconds", "E1": "Notes_Review"}

	for k, v := range header {
		if err := sheet.SetCellValue(sheetName, k, v); err != nil {
			return errors.Wrapf(err, "unable to write header %s", k)
		}
	}
	return nil
}

// populateSheet fill each row per failed test.
func populateSheet(sheet *excelize.File, sheetName string, failures []TestRecord) error {
	for idx, rec := range failures {
		row := idx + 2
		values := []interface{}{idx + 1, rec.Name, string(rec.Outcome)}
		if rec.Elapsed != nil {
			values = append(values, *rec.Elapsed)
		}
		if err := sheet.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return errors.Wrapf(err, "unable to write row for %q", rec.Name)
		}
	}
	return nil
}
