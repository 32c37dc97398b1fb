package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"parquet-dataset/internal/middleware"
	"parquet-dataset/internal/service"
	"parquet-dataset/internal/utils"
	"parquet-dataset/pkg/response"
)

type DatasetController struct {
	service   service.DatasetService
	validator *validator.Validate
}

func NewDatasetController(service service.DatasetService) *DatasetController {
	return &DatasetController{
		service:   service,
		validator: validator.New(),
	}
}

// AnalysePaths godoc
// @Summary Analyse a list of file paths
// @Description Splits paths into a common base and relative parts, classifies the partitioning scheme and types partition values
// @Tags paths
// @Accept json
// @Produce json
// @Param request body service.AnalysePathsRequest true "Paths to analyse"
// @Success 200 {object} response.StandardResponse{data=service.AnalysePathsResponse}
// @Failure 400 {object} response.StandardResponse
// @Router /api/v1/paths/analyse [post]
func (dc *DatasetController) AnalysePaths(c *gin.Context) {
	var req service.AnalysePathsRequest
	if !dc.bindJSON(c, &req) {
		return
	}

	result, err := dc.service.AnalysePaths(c.Request.Context(), &req)
	if err != nil {
		dc.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse(result, middleware.GetCorrelationID(c)))
}

// InferValues godoc
// @Summary Infer the type of partition value tokens
// @Tags values
// @Accept json
// @Produce json
// @Param request body service.InferValuesRequest true "Tokens"
// @Success 200 {object} response.StandardResponse{data=service.InferValuesResponse}
// @Failure 400 {object} response.StandardResponse
// @Router /api/v1/values/infer [post]
func (dc *DatasetController) InferValues(c *gin.Context) {
	var req service.InferValuesRequest
	if !dc.bindJSON(c, &req) {
		return
	}

	result, err := dc.service.InferValues(c.Request.Context(), &req)
	if err != nil {
		dc.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse(result, middleware.GetCorrelationID(c)))
}

// InspectDataset godoc
// @Summary Open a dataset and describe its layout
// @Tags datasets
// @Accept json
// @Produce json
// @Param request body service.DatasetRequest true "Dataset root"
// @Success 200 {object} response.StandardResponse{data=service.DatasetInfo}
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasets/inspect [post]
func (dc *DatasetController) InspectDataset(c *gin.Context) {
	var req service.DatasetRequest
	if !dc.bindJSON(c, &req) {
		return
	}

	info, err := dc.service.InspectDataset(c.Request.Context(), &req)
	if err != nil {
		dc.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse(info, middleware.GetCorrelationID(c)))
}

// GetMetadata godoc
// @Summary Get the custom footer metadata of a dataset
// @Tags datasets
// @Produce json
// @Param root query string true "Dataset root"
// @Success 200 {object} response.StandardResponse{data=service.MetadataResponse}
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasets/metadata [get]
func (dc *DatasetController) GetMetadata(c *gin.Context) {
	var req service.DatasetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dc.sendValidationError(c, "Invalid query parameters", err)
		return
	}
	if err := dc.validator.Struct(&req); err != nil {
		dc.sendValidationError(c, "Validation failed", err)
		return
	}

	result, err := dc.service.GetMetadata(c.Request.Context(), &req)
	if err != nil {
		dc.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse(result, middleware.GetCorrelationID(c)))
}

// UpdateMetadata godoc
// @Summary Update and persist the custom footer metadata of a dataset
// @Description Values set keys, null deletes them. The reserved schema key is never modified.
// @Tags datasets
// @Accept json
// @Produce json
// @Param request body service.UpdateMetadataRequest true "Metadata changes"
// @Success 200 {object} response.StandardResponse{data=service.MetadataResponse}
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasets/metadata [patch]
func (dc *DatasetController) UpdateMetadata(c *gin.Context) {
	var req service.UpdateMetadataRequest
	if !dc.bindJSON(c, &req) {
		return
	}

	result, err := dc.service.UpdateMetadata(c.Request.Context(), &req)
	if err != nil {
		dc.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse(result, middleware.GetCorrelationID(c)))
}

func (dc *DatasetController) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		dc.sendValidationError(c, "Invalid request body", err)
		return false
	}
	if err := dc.validator.Struct(req); err != nil {
		dc.sendValidationError(c, "Validation failed", err)
		return false
	}
	return true
}

func (dc *DatasetController) sendError(c *gin.Context, err error) {
	c.JSON(utils.GetErrorStatus(err), response.ErrorResponseFromError(err, middleware.GetCorrelationID(c)))
}

func (dc *DatasetController) sendValidationError(c *gin.Context, message string, err error) {
	c.JSON(http.StatusUnprocessableEntity, response.ValidationErrorResponse(message, err.Error(), middleware.GetCorrelationID(c)))
}
