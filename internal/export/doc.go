// Package export renders recorded runs into office formats: an XLSX
// workbook with one sheet per body and a one-page PDF run sheet.
package export
