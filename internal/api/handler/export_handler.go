package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCalendar = "text/calendar; charset=utf-8"
)

// sendFile 以附件形式写出导出文件
func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func sendXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	sendFile(c, mimeXLSX, filename, buf.Bytes())
}
