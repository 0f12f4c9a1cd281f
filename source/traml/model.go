package traml

import "encoding/xml"

// Types for decoding TraML 1.0. Only the parts that feed a transition list
// are modelled; everything else is skipped by encoding/xml.

type document struct {
	XMLName     xml.Name     `xml:"TraML"`
	Proteins    []protein    `xml:"ProteinList>Protein"`
	Peptides    []peptide    `xml:"CompoundList>Peptide"`
	Compounds   []compound   `xml:"CompoundList>Compound"`
	Transitions []transition `xml:"TransitionList>Transition"`
}

type cvParam struct {
	Accession string `xml:"accession,attr"`
	Name      string `xml:"name,attr"`
	Value     string `xml:"value,attr"`
}

type userParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type params struct {
	CV   []cvParam   `xml:"cvParam"`
	User []userParam `xml:"userParam"`
}

func (p params) cv(accession string) (string, bool) {
	for _, c := range p.CV {
		if c.Accession == accession {
			return c.Value, true
		}
	}
	return "", false
}

func (p params) user(name string) (string, bool) {
	for _, u := range p.User {
		if u.Name == name {
			return u.Value, true
		}
	}
	return "", false
}

type protein struct {
	ID string `xml:"id,attr"`
	params
}

// accession is the protein accession cvParam, or the id OpenMS writes the
// accession into when the param is absent.
func (p *protein) accession() string {
	if v, ok := p.cv(accProteinAccession); ok && v != "" {
		return v
	}
	return p.ID
}

type proteinRef struct {
	Ref string `xml:"ref,attr"`
}

type peptide struct {
	ID             string       `xml:"id,attr"`
	Sequence       string       `xml:"sequence,attr"`
	ProteinRefs    []proteinRef `xml:"ProteinRef"`
	RetentionTimes []params     `xml:"RetentionTimeList>RetentionTime"`
	params
}

type compound struct {
	ID             string   `xml:"id,attr"`
	RetentionTimes []params `xml:"RetentionTimeList>RetentionTime"`
	params
}

type product struct {
	Interpretations []params `xml:"InterpretationList>Interpretation"`
	params
}

type transition struct {
	ID          string  `xml:"id,attr"`
	PeptideRef  string  `xml:"peptideRef,attr"`
	CompoundRef string  `xml:"compoundRef,attr"`
	Precursor   params  `xml:"Precursor"`
	Product     product `xml:"Product"`
	params
}

// PSI-MS accessions read from cvParams.
const (
	accChargeState      = "MS:1000041"
	accCollisionEnergy  = "MS:1000045"
	accTargetMz         = "MS:1000827"
	accMolecularFormula = "MS:1000866"
	accSMILES           = "MS:1000868"
	accProteinAccession = "MS:1000885"
	accLocalRT          = "MS:1000895"
	accNormalizedRT     = "MS:1000896"
	accIRT              = "MS:1002005"
	accSeriesOrdinal    = "MS:1000903"
	accProductIntensity = "MS:1001226"
	accDecoyTransition  = "MS:1002007"
	accTargetTransition = "MS:1002008"
	accDriftTime        = "MS:1002476"
	accInverseMobility  = "MS:1002815"
)

var fragmentTypes = map[string]string{
	"MS:1001229": "a",
	"MS:1001224": "b",
	"MS:1001231": "c",
	"MS:1001228": "x",
	"MS:1001220": "y",
	"MS:1001230": "z",
}
