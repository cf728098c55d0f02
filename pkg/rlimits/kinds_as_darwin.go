package rlimits

const resourceAS = 5
