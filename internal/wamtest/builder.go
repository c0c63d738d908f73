package wamtest

import "fmt"

// Body builds one response body the way a speaker formats it. inner is
// the XML inside the <response> element.
func Body(api, method, user string, ok bool, inner string) string {
	result := "ng"
	if ok {
		result = "ok"
	}
	return fmt.Sprintf(
		`<%s><method>%s</method><version>1.0</version>`+
			`<speakerip>127.0.0.1</speakerip><user_identifier>%s</user_identifier>`+
			`<response result="%s">%s</response></%s>`,
		api, method, user, result, inner, api)
}

// OKBody builds a UIC response body with result ok.
func OKBody(method, user, inner string) string {
	return Body("UIC", method, user, true, inner)
}
