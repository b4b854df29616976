package converter

import (
	"path/filepath"
	"strings"
)

const (
	officeSuiteHint = "Install LibreOffice (https://www.libreoffice.org/download/) and make sure soffice is on PATH."
	docx2pdfHint    = "Install Microsoft Word together with the docx2pdf command (pip install docx2pdf)."
)

// OfficeSuiteCandidates returns the headless office suite executables for a platform
func OfficeSuiteCandidates(platform string) []string {
	switch platform {
	case "windows":
		return []string{
			"soffice",
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	case "darwin":
		return []string{
			"soffice",
			"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		}
	default:
		return []string{"libreoffice", "soffice"}
	}
}

// OfficeSuite builds the headless office suite tool converting into target.
// filter overrides the --convert-to value (e.g. `docx:"MS Word 2007 XML"`).
func OfficeSuite(platform string, target Format, filter string) ExternalTool {
	convertTo := string(target)
	if filter != "" {
		convertTo = filter
	}
	return ExternalTool{
		Name:       "LibreOffice",
		Candidates: OfficeSuiteCandidates(platform),
		Args: func(source, outDir, _ string) []string {
			return []string{"--headless", "--convert-to", convertTo, "--outdir", outDir, source}
		},
		Output: func(source, outDir, _ string) string {
			base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
			return filepath.Join(outDir, base+target.Extension())
		},
		Hint:    officeSuiteHint,
		Timeout: DefaultToolTimeout,
	}
}

// Docx2PDF is the Microsoft Word automation tool, which writes straight to dest
func Docx2PDF() ExternalTool {
	return ExternalTool{
		Name:       "docx2pdf",
		Candidates: []string{"docx2pdf"},
		Args: func(source, _, dest string) []string {
			return []string{source, dest}
		},
		Output: func(_, _, dest string) string {
			return dest
		},
		Hint:    docx2pdfHint,
		Timeout: DefaultToolTimeout,
	}
}
