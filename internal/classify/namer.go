package classify

import (
	"fmt"
	"strings"

	"github.com/unistad/document-archiver/constants"
)

// Dictionaries bundles the read-only mappings a processing run classifies
// against. Build once at startup and share by reference; nothing here is
// mutated after construction.
type Dictionaries struct {
	Units    *Dictionary
	Services *Dictionary
	DocTypes *Dictionary

	UnitFolders    *Dictionary
	ServiceFolders *Dictionary
	DocTypeFolders *Dictionary

	// EDRMS number prefixes recognized as ours. Carried from configuration
	// for operator reference; the reference pattern itself is fixed.
	EDRMSPrefixes []string
}

// LoadDictionaries builds the full dictionary set from settings. The three
// classification dictionaries are mandatory and must be non-empty.
func LoadDictionaries(s Settings) (*Dictionaries, error) {
	d := &Dictionaries{
		Units:          LoadDictionary(s, "Unit"),
		Services:       LoadDictionary(s, "Service"),
		DocTypes:       LoadDictionary(s, "DocumentType"),
		UnitFolders:    LoadDictionary(s, "UnitFolder"),
		ServiceFolders: LoadDictionary(s, "ServiceFolder"),
		DocTypeFolders: LoadDictionary(s, "DocumentTypeFolder"),
		EDRMSPrefixes:  LoadList(s, "Edrms"),
	}
	if d.Units.Len() == 0 {
		return nil, fmt.Errorf("unit dictionary can't be empty")
	}
	if d.Services.Len() == 0 {
		return nil, fmt.Errorf("service dictionary can't be empty")
	}
	if d.DocTypes.Len() == 0 {
		return nil, fmt.Errorf("document type dictionary can't be empty")
	}
	return d, nil
}

// Result is the outcome of classifying one document. Check OK before using
// any other field; a failed result must never become a destination path.
type Result struct {
	UnitCode      string
	UnitFolder    string
	ServiceCode   string
	ServiceFolder string
	DocTypeCode   string
	DocTypeFolder string
	Reference     string
	Version       string // "-V3" style suffix, "" when undetermined

	TargetFolder string // "unit/service/doctype" relative to the archive root
	FileName     string // without extension

	OK          bool
	ErrorDetail string
}

// NameDocument classifies the two page texts against the dictionaries and
// composes the target sub-folder and file name. It is deterministic and
// side-effect free. The file name is
// <unit>-<service>-<doctype>-<reference><version>, e.g.
// EC-IPTV-SAD-SC-C05-CAB-ORD-DBF-IT-00001-V2. Every missing mandatory field
// appends to ErrorDetail; version alone never fails a document.
func NameDocument(coverPage, secondPage string, dicts *Dictionaries) Result {
	var r Result
	var detail strings.Builder

	r.UnitCode = Classify(coverPage, dicts.Units, true)
	if r.UnitCode == "" {
		detail.WriteString("Unit not found. [Error:114]")
	}
	r.UnitFolder = targetFolder(r.UnitCode, dicts.UnitFolders)
	if r.UnitFolder == "" {
		detail.WriteString("Unit target folder not found. [Error:115]")
	}

	r.ServiceCode = Classify(coverPage, dicts.Services, false)
	if r.ServiceCode == "" {
		detail.WriteString("Service not found. [Error:114]")
	}
	r.ServiceFolder = targetFolder(r.ServiceCode, dicts.ServiceFolders)
	if r.ServiceFolder == "" {
		detail.WriteString("Service target folder not found. [Error:115]")
	}

	r.DocTypeCode = Classify(coverPage, dicts.DocTypes, true)
	if r.DocTypeCode == "" {
		detail.WriteString("Document Type not found. [Error:114]")
	}
	r.DocTypeFolder = targetFolder(r.DocTypeCode, dicts.DocTypeFolders)
	if r.DocTypeFolder == "" {
		detail.WriteString("Document Type target folder not found. [Error:115]")
	}

	r.Reference = ExtractReference(coverPage, dicts.EDRMSPrefixes)
	if r.Reference == "" {
		detail.WriteString("EDRMS reference number not found. [Error:114]")
	}

	r.Version = ExtractVersion(secondPage)

	r.ErrorDetail = detail.String()
	r.OK = r.ErrorDetail == ""

	r.TargetFolder = strings.Join(
		[]string{r.UnitFolder, r.ServiceFolder, r.DocTypeFolder},
		constants.FolderDelimiter,
	)
	r.FileName = fmt.Sprintf("%s-%s-%s-%s%s", r.UnitCode, r.ServiceCode, r.DocTypeCode, r.Reference, r.Version)
	return r
}

// targetFolder resolves the sub-folder for a classified code. Multi-service
// codes are hyphen-joined; only the first segment picks the folder. The
// lookup is substring containment of the segment inside each mapping label,
// first match wins.
func targetFolder(code string, folders *Dictionary) string {
	first := strings.SplitN(code, "-", 2)[0]
	if first == "" {
		return ""
	}
	for _, e := range folders.Entries() {
		if strings.Contains(e.Label, first) {
			return e.Code
		}
	}
	return ""
}
