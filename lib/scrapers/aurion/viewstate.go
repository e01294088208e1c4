package aurion

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const viewStateField = "javax.faces.ViewState"

const (
	formIdInitField = "form:idInit"
	formWidthField  = "form:largeurDivCenter"
)

// formState is the hidden-field bundle one server-side UI
// "conversation" hangs off of. The view-state token is single-use:
// every navigation step consumes it and harvests a fresh one, the rest
// of the bundle is carried forward unchanged.
type formState struct {
	ViewState string
	IdInit    string
	Width     string
}

func extractFormState(doc *goquery.Document) (formState, error) {
	viewState := doc.Find(`input[name='javax.faces.ViewState']`).AttrOr("value", "")
	if viewState == "" {
		return formState{}, fmt.Errorf("%w: missing %s", ErrProtocolMismatch, viewStateField)
	}
	idInit := doc.Find(`input[name='form:idInit']`).AttrOr("value", "")
	if idInit == "" {
		return formState{}, fmt.Errorf("%w: missing %s", ErrProtocolMismatch, formIdInitField)
	}
	// the layout width is genuinely absent on some portal skins, the
	// browser default is good enough there
	width := doc.Find(`input[name='form:largeurDivCenter']`).AttrOr("value", "1536")

	return formState{
		ViewState: viewState,
		IdInit:    idInit,
		Width:     width,
	}, nil
}

// partial-update responses come back as XML rather than HTML:
//
//	<partial-response>
//	  <changes>
//	    <update id="j_id1:javax.faces.ViewState:0"><![CDATA[-167...]]></update>
//	  </changes>
//	</partial-response>
type partialResponse struct {
	XMLName xml.Name        `xml:"partial-response"`
	Updates []partialUpdate `xml:"changes>update"`
}

type partialUpdate struct {
	ID      string `xml:"id,attr"`
	Content string `xml:",chardata"`
}

// harvestViewState pulls the freshly issued view-state token out of an
// XML partial-update response body.
func harvestViewState(body []byte) (string, error) {
	var partial partialResponse
	err := xml.Unmarshal(body, &partial)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable partial response: %v", ErrProtocolMismatch, err)
	}

	for _, update := range partial.Updates {
		if strings.Contains(update.ID, viewStateField) {
			token := strings.TrimSpace(update.Content)
			if token != "" {
				return token, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no view-state token in partial response", ErrProtocolMismatch)
}
