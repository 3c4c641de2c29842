package usecase

// BuildSubmittedBlocks is exported for testing
var BuildSubmittedBlocks = buildSubmittedBlocks

// BuildAssignedBlocks is exported for testing
var BuildAssignedBlocks = buildAssignedBlocks

// Wait is exported for testing
var Wait = wait
