package summary

import "github.com/tidwall/gjson"

// sequence coerces a collection encoded as an array or a single object into a
// slice of objects. Anything that is not an object is dropped.
func sequence(r gjson.Result) []gjson.Result {
	var elems []gjson.Result
	switch {
	case r.IsArray():
		elems = r.Array()
	case r.IsObject():
		elems = []gjson.Result{r}
	default:
		return nil
	}

	out := make([]gjson.Result, 0, len(elems))
	for _, e := range elems {
		if e.IsObject() {
			out = append(out, e)
		}
	}
	return out
}

// scalar returns strings and numbers as text, everything else as "".
func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String()
	default:
		return ""
	}
}

// reference reads a URL that is either a plain string or an object carrying it
// under "texto" (current API) or "url" (older dumps).
func reference(r gjson.Result) string {
	if r.IsObject() {
		if v := scalar(r.Get("texto")); v != "" {
			return v
		}
		return scalar(r.Get("url"))
	}
	return scalar(r)
}
