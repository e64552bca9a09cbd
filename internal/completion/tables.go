package completion

import (
	"fmt"
	"strings"
)

type bifArg struct {
	name     string
	optional bool
}

type bif struct {
	name string
	args []bifArg
	doc  string
}

// signature renders name(arg, [opt]).
func (b bif) signature() string {
	parts := make([]string, 0, len(b.args))
	for _, a := range b.args {
		if a.optional {
			parts = append(parts, "["+a.name+"]")
		} else {
			parts = append(parts, a.name)
		}
	}
	return fmt.Sprintf("%s(%s)", b.name, strings.Join(parts, ", "))
}

func req(name string) bifArg { return bifArg{name: name} }
func opt(name string) bifArg { return bifArg{name: name, optional: true} }

var bifs = []bif{
	{"abs", []bifArg{req("value")}, "Absolute value of a number."},
	{"arrayAppend", []bifArg{req("array"), req("value"), opt("merge")}, "Appends a value to an array."},
	{"arrayContains", []bifArg{req("array"), req("value")}, "Position of a value in an array, 0 when missing."},
	{"arrayDeleteAt", []bifArg{req("array"), req("index")}, "Removes the element at index."},
	{"arrayEach", []bifArg{req("array"), req("callback"), opt("parallel"), opt("maxThreads")}, "Calls callback for every element."},
	{"arrayFilter", []bifArg{req("array"), req("callback"), opt("parallel"), opt("maxThreads")}, "Elements for which callback returns true."},
	{"arrayLen", []bifArg{req("array")}, "Number of elements."},
	{"arrayMap", []bifArg{req("array"), req("callback"), opt("parallel"), opt("maxThreads")}, "New array of callback results."},
	{"arrayNew", []bifArg{opt("dimensions")}, "Creates an array."},
	{"arrayReduce", []bifArg{req("array"), req("callback"), opt("initialValue")}, "Folds the array into one value."},
	{"arraySort", []bifArg{req("array"), req("sortType"), opt("sortOrder")}, "Sorts an array in place."},
	{"arrayToList", []bifArg{req("array"), opt("delimiter")}, "Joins elements into a list."},
	{"createObject", []bifArg{req("type"), req("className"), opt("properties")}, "Instantiates a class or Java object."},
	{"createUUID", nil, "Returns a random UUID."},
	{"dateAdd", []bifArg{req("datepart"), req("number"), req("date")}, "Adds units of time to a date."},
	{"dateDiff", []bifArg{req("datepart"), req("date1"), req("date2")}, "Difference between dates in datepart units."},
	{"dateFormat", []bifArg{req("date"), opt("mask"), opt("timezone")}, "Formats a date."},
	{"deserializeJSON", []bifArg{req("json"), opt("strictMapping")}, "Parses a JSON string."},
	{"dump", []bifArg{req("var"), opt("label"), opt("top")}, "Outputs a readable view of a value."},
	{"duplicate", []bifArg{req("object"), opt("deep")}, "Deep copies a value."},
	{"fileExists", []bifArg{req("path")}, "Whether a file exists."},
	{"fileRead", []bifArg{req("filepath"), opt("charset")}, "Reads a file into a string."},
	{"fileWrite", []bifArg{req("file"), req("data"), opt("charset")}, "Writes a string to a file."},
	{"find", []bifArg{req("substring"), req("string"), opt("start")}, "Case sensitive position of a substring."},
	{"findNoCase", []bifArg{req("substring"), req("string"), opt("start")}, "Case insensitive position of a substring."},
	{"getTickCount", nil, "Milliseconds since the epoch."},
	{"hash", []bifArg{req("input"), opt("algorithm"), opt("encoding")}, "Hashes a value."},
	{"isArray", []bifArg{req("value")}, "Whether a value is an array."},
	{"isDefined", []bifArg{req("variable")}, "Whether a variable name is defined."},
	{"isNull", []bifArg{req("value")}, "Whether a value is null."},
	{"isNumeric", []bifArg{req("string")}, "Whether a value converts to a number."},
	{"isStruct", []bifArg{req("value")}, "Whether a value is a struct."},
	{"isSimpleValue", []bifArg{req("value")}, "Whether a value is a string, number, boolean or date."},
	{"len", []bifArg{req("value")}, "Length of a string, array or struct."},
	{"listLen", []bifArg{req("list"), opt("delimiter")}, "Number of list elements."},
	{"listToArray", []bifArg{req("list"), opt("delimiter"), opt("includeEmptyFields")}, "Splits a list into an array."},
	{"lCase", []bifArg{req("string")}, "Lower cases a string."},
	{"now", nil, "Current date and time."},
	{"println", []bifArg{req("message")}, "Prints a line to the console."},
	{"replace", []bifArg{req("string"), req("substring1"), req("substring2"), opt("scope")}, "Replaces occurrences of a substring."},
	{"reReplace", []bifArg{req("string"), req("regex"), req("substring"), opt("scope")}, "Replaces regex matches."},
	{"serializeJSON", []bifArg{req("var"), opt("queryFormat"), opt("useSecureJSONPrefix")}, "Encodes a value as JSON."},
	{"structAppend", []bifArg{req("struct1"), req("struct2"), opt("overwrite")}, "Copies keys from struct2 into struct1."},
	{"structCount", []bifArg{req("struct")}, "Number of keys."},
	{"structDelete", []bifArg{req("struct"), req("key")}, "Removes a key."},
	{"structKeyExists", []bifArg{req("struct"), req("key")}, "Whether a key exists."},
	{"structKeyList", []bifArg{req("struct"), opt("delimiter")}, "Keys as a list."},
	{"structNew", []bifArg{opt("type")}, "Creates a struct."},
	{"throw", []bifArg{opt("message"), opt("type"), opt("detail"), opt("errorcode")}, "Throws an exception."},
	{"trim", []bifArg{req("string")}, "Removes leading and trailing whitespace."},
	{"uCase", []bifArg{req("string")}, "Upper cases a string."},
	{"val", []bifArg{req("string")}, "Numeric value of the leading digits."},
	{"writeDump", []bifArg{req("var"), opt("label")}, "Outputs a readable view of a value."},
	{"writeOutput", []bifArg{req("message")}, "Writes to the output buffer."},
}

type component struct {
	name   string
	attrs  []string
	body   bool
	detail string
	doc    string
}

// snippet renders the tag with attribute placeholders.
func (c component) snippet() string {
	var b strings.Builder
	b.WriteString("bx:")
	b.WriteString(c.name)
	for i, a := range c.attrs {
		fmt.Fprintf(&b, ` %s="${%d}"`, a, i+1)
	}
	if c.body {
		fmt.Fprintf(&b, ">\n\t$0\n</bx:%s>", c.name)
	} else {
		b.WriteString(" />$0")
	}
	return b.String()
}

var components = []component{
	{"abort", nil, false, "Stops processing", "Stops processing of the current request."},
	{"dump", []string{"var"}, false, "Dumps a value", "Outputs a readable view of a value."},
	{"http", []string{"url", "method"}, true, "HTTP request", "Performs an HTTP request."},
	{"if", []string{"condition"}, true, "Conditional", "Renders the body when the condition holds."},
	{"include", []string{"template"}, false, "Includes a template", "Includes and runs another template."},
	{"loop", []string{"array", "item"}, true, "Loop", "Iterates over a collection or range."},
	{"lock", []string{"name", "type", "timeout"}, true, "Lock", "Serializes access to the body."},
	{"output", nil, true, "Output", "Evaluates expressions in the body."},
	{"param", []string{"name", "default"}, false, "Parameter", "Declares a variable with a default."},
	{"query", []string{"name"}, true, "Query", "Runs a SQL query."},
	{"savecontent", []string{"variable"}, true, "Capture output", "Captures the body output into a variable."},
	{"script", nil, true, "Script island", "Runs the body as script."},
	{"set", nil, false, "Assignment", "Evaluates an assignment."},
	{"thread", []string{"name"}, true, "Thread", "Runs the body in a thread."},
	{"throw", []string{"message"}, false, "Throw", "Throws an exception."},
	{"transaction", nil, true, "Transaction", "Wraps the body in a database transaction."},
	{"try", nil, true, "Try", "Catches exceptions raised by the body."},
}
