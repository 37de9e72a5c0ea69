package util

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxMultipartMemory = 8 << 20

// ParamsToMap reads the request payload into a field -> raw value map. JSON
// bodies keep numbers as json.Number; form bodies keep the first value of
// every key.
func ParamsToMap(c *gin.Context) (map[string]any, error) {
	params := map[string]any{}

	switch c.ContentType() {
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}

		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, err
		}

		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
	default:
		if c.Request.Body == nil {
			return params, nil
		}

		decoder := json.NewDecoder(c.Request.Body)
		decoder.UseNumber()

		if err := decoder.Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	return params, nil
}

// QueryInt returns the integer value of a query parameter or fallback when it
// is missing or not a number.
func QueryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))

	if err != nil {
		return fallback
	}

	return value
}
